package hotelsite

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"journey-harness/internal/domain/reservation"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type browserClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestSite(t *testing.T, opts Options) (*browserClient, *Site) {
	t.Helper()

	site, err := New(opts)
	require.NoError(t, err)

	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browserClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}, site
}

func (c *browserClient) get(path string) (*goquery.Document, *http.Response) {
	c.t.Helper()
	res, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(c.t, err)
	return doc, res
}

func (c *browserClient) post(path string, form url.Values) (*goquery.Document, *http.Response) {
	c.t.Helper()
	res, err := c.http.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(c.t, err)
	return doc, res
}

func (c *browserClient) login(prefix, email, password string) (*goquery.Document, *http.Response) {
	return c.post(prefix+"login.html", url.Values{"email": {email}, "password": {password}})
}

func signUpForm() url.Values {
	return url.Values{
		"email":                 {"test@foo.jp"},
		"password":              {"Testtest1"},
		"password-confirmation": {"Testtest1"},
		"username":              {"山田太郎"},
	}
}

func reserveForm() url.Values {
	return url.Values{
		"plan-id":        {"1"},
		"date":           {"2020/08/06"},
		"term":           {"3"},
		"head-count":     {"4"},
		"breakfast":      {"on"},
		"early-check-in": {"on"},
		"sightseeing":    {"on"},
		"username":       {"山田一郎"},
		"contact":        {"email"},
		"email":          {"ichiro@example.com"},
	}
}

func TestSite_IndexLinks(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	for _, path := range []string{"/", "/index.html", "/ja/", "/ja/index.html"} {
		doc, res := c.get(path)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Equal(t, 1, doc.Find(`a[href="./signup.html"]`).Length(), path)
		assert.Equal(t, 1, doc.Find(`a[href="./login.html"]`).Length(), path)
		assert.Equal(t, 1, doc.Find(`a[href="./plans.html"]`).Length(), path)
		assert.Zero(t, doc.Find(`a[href="./mypage.html"]`).Length(), path)
	}
}

func TestSite_SignUpThenLogoutThenLogin(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	doc, res := c.post("/signup.html", signUpForm())
	assert.Equal(t, "/mypage.html", res.Request.URL.Path)
	assert.Equal(t, "アイコン設定", doc.Find("#icon-link").Text())
	assert.Equal(t, 1, doc.Find(`#logout-form > button[type="submit"]`).Length())
	assert.Equal(t, 1, doc.Find(`#delete-form > button[type="submit"]`).Length())
	assert.Equal(t, "山田太郎", doc.Find("#username").Text())

	doc, res = c.post("/logout", nil)
	assert.Equal(t, "/index.html", res.Request.URL.Path)
	assert.Equal(t, 1, doc.Find(`a[href="./login.html"]`).Length())

	doc, _ = c.login("/", "test@foo.jp", "Testtest1")
	assert.Equal(t, "アイコン設定", doc.Find("#icon-link").Text())
}

func TestSite_SignUpTwiceReplacesAccount(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	c.post("/signup.html", signUpForm())
	c.post("/logout", nil)

	form := signUpForm()
	form.Set("password", "Another123")
	form.Set("password-confirmation", "Another123")
	_, res := c.post("/signup.html", form)
	assert.Equal(t, "/mypage.html", res.Request.URL.Path)
}

func TestSite_SignUpValidation(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	form := signUpForm()
	form.Set("password-confirmation", "Mismatch1")
	doc, res := c.post("/signup.html", form)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "入力されたパスワードと一致しません。", doc.Find("#signup-message").Text())
	assert.Equal(t, "test@foo.jp", doc.Find("#email").AttrOr("value", ""))
}

func TestSite_LoginFailure(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	doc, res := c.login("/ja/", "ichiro@example.com", "wrong")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, LoginFailedMessage, doc.Find("#password-message").Text())
}

func TestSite_MyPageRequiresLogin(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	_, res := c.get("/ja/mypage.html")
	assert.Equal(t, "/ja/login.html", res.Request.URL.Path)
}

func TestSite_DeleteAccount(t *testing.T) {
	c, _ := newTestSite(t, Options{})
	c.post("/signup.html", signUpForm())

	res, err := c.http.Post(c.base+"/api/delete", "", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	doc, _ := c.get("/")
	assert.Equal(t, 1, doc.Find(`a[href="./login.html"]`).Length(), "logged out after delete")

	doc, _ = c.login("/", "test@foo.jp", "Testtest1")
	assert.Equal(t, LoginFailedMessage, doc.Find("#password-message").Text())
}

func TestSite_DeleteRequiresLogin(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	res, err := c.http.Post(c.base+"/api/delete", "", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

const premiumHeaderSelector = "#plan-list > div.col-12.col-md-6.col-lg-4 > div.card.text-center.shadow-sm.mb-3 > div.card-header"

func cardHeaders(doc *goquery.Document) []string {
	var headers []string
	doc.Find(premiumHeaderSelector).Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	return headers
}

func TestSite_PlansForPremiumMember(t *testing.T) {
	c, _ := newTestSite(t, Options{})
	c.login("/ja/", "ichiro@example.com", "password")

	doc, _ := c.get("/ja/plans.html")
	assert.Contains(t, cardHeaders(doc), reservation.PremiumHeader)

	link := doc.Find(`a[href="./reserve.html?plan-id=1"]`)
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "_blank", link.AttrOr("target", ""))
}

func TestSite_PlansHidePremiumFromOthers(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	doc, _ := c.get("/ja/plans.html")
	assert.NotContains(t, cardHeaders(doc), reservation.PremiumHeader)
	assert.Zero(t, doc.Find(`a[href="./reserve.html?plan-id=1"]`).Length())

	c.login("/ja/", "sakura@example.com", "pass1234")
	doc, _ = c.get("/ja/plans.html")
	assert.NotContains(t, cardHeaders(doc), reservation.PremiumHeader)

	_, res := c.get("/ja/reserve.html?plan-id=1")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestSite_ReserveForm(t *testing.T) {
	c, _ := newTestSite(t, Options{})
	c.login("/ja/", "ichiro@example.com", "password")

	doc, res := c.get("/ja/reserve.html?plan-id=1")
	require.Equal(t, http.StatusOK, res.StatusCode)

	for _, sel := range []string{
		"#date", "#plan-desc", "#term", "#head-count",
		"#breakfast", "#early-check-in", "#sightseeing",
		"#contact", "#total-bill", "#submit-button",
	} {
		assert.Equal(t, 1, doc.Find(sel).Length(), sel)
	}
	assert.Equal(t, "プレミアムプラン", doc.Find("#plan-name").Text())
	assert.Equal(t, "山田一郎", doc.Find("#username").AttrOr("value", ""))
	assert.Equal(t, 1, doc.Find(`#contact option[value="email"]`).Length())

	tomorrow := reservation.FormatDate(time.Now().AddDate(0, 0, 1))
	assert.Equal(t, tomorrow, doc.Find("#date").AttrOr("value", ""))

	_, res = c.get("/ja/reserve.html?plan-id=42")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSite_BillAPI(t *testing.T) {
	c, _ := newTestSite(t, Options{})
	c.login("/ja/", "ichiro@example.com", "password")

	res, err := c.http.Get(c.base + "/ja/api/bill?" + reserveForm().Encode())
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Amount int    `json:"amount"`
		Total  string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 150000, body.Amount)
	assert.Equal(t, "150,000円", body.Total)

	q := reserveForm()
	q.Set("date", "2020/08")
	res2, err := c.http.Get(c.base + "/ja/api/bill?" + q.Encode())
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res2.StatusCode)
}

func TestSite_Confirm(t *testing.T) {
	c, _ := newTestSite(t, Options{})
	c.login("/ja/", "ichiro@example.com", "password")

	doc, res := c.post("/ja/confirm.html", reserveForm())
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, "150,000円", doc.Find("#total-bill").Text())
	assert.Equal(t, "2020年8月6日 〜 2020年8月9日 3泊", doc.Find("#term").Text())
	assert.Equal(t, "4名様", doc.Find("#head-count").Text())
	assert.Equal(t, "朝食バイキング昼からチェックインプランお得な観光プラン", doc.Find("#plans").Text())
	assert.Equal(t, "山田一郎様", doc.Find("#username").Text())
	assert.Equal(t, "メール：ichiro@example.com", doc.Find("#contact").Text())

	assert.Equal(t, 1, doc.Find(`button[data-target="#success-modal"]`).Length())
	assert.Equal(t, "閉じる", doc.Find(`button[type="button"][class="btn btn-success"]`).Text())
}

func TestSite_ConfirmWithoutAddOns(t *testing.T) {
	c, _ := newTestSite(t, Options{})

	form := reserveForm()
	form.Set("plan-id", "3")
	form.Del("breakfast")
	form.Del("early-check-in")
	form.Del("sightseeing")
	form.Set("contact", "no")

	doc, res := c.post("/confirm.html", form)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "なし", doc.Find("#plans").Text())
	assert.Equal(t, "希望しない", doc.Find("#contact").Text())
}

func TestSite_AccessLog(t *testing.T) {
	var buf syncBuffer
	c, _ := newTestSite(t, Options{AccessLog: &buf})

	c.get("/ja/plans.html")

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "hotelsite")
	}, time.Second, 10*time.Millisecond)
}

func TestSite_CustomMembers(t *testing.T) {
	c, _ := newTestSite(t, Options{Members: []Member{
		{Email: "jiro@example.com", Password: "secret123", Name: "林潤", Rank: RankPremium},
	}})

	doc, _ := c.login("/", "ichiro@example.com", "password")
	assert.Equal(t, LoginFailedMessage, doc.Find("#password-message").Text())

	doc, _ = c.login("/", "jiro@example.com", "secret123")
	assert.Equal(t, "林潤", doc.Find("#username").Text())
}

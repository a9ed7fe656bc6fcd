package hotelsite

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"journey-harness/internal/domain/reservation"
)

const (
	sessionCookie = "hotel_session"

	// LoginFailedMessage is shown under the password field after a failed login.
	LoginFailedMessage = "メールアドレスまたはパスワードが違います。"
	// DeleteConfirmMessage is the confirm dialog raised before an account is deleted.
	DeleteConfirmMessage = "退会すると全ての情報が削除されます。よろしいですか？"
	// DeletedMessage is the alert raised once an account is deleted.
	DeletedMessage = "退会処理を完了しました。ご利用ありがとうございました。"
)

type base struct {
	Member *Member
}

type formView struct {
	base
	Error string
	Email string
}

type mypageView struct {
	base
	ConfirmMessage string
	DeletedMessage string
}

type planView struct {
	reservation.Plan
	Header string
}

type plansView struct {
	base
	Plans []planView
}

type reserveView struct {
	base
	Plan reservation.Plan
	Date string
}

type confirmView struct {
	base
	Plan      reservation.Plan
	Total     string
	Term      string
	HeadCount string
	AddOns    []string
	Username  string
	Contact   string
}

func (s *Site) member(r *http.Request) *Member {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	m, ok := s.store.SessionMember(c.Value)
	if !ok {
		return nil
	}
	return &m
}

func (s *Site) startSession(w http.ResponseWriter, email string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.store.CreateSession(email),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Site) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.store.EndSession(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
}

func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index", base{Member: s.member(r)})
}

func (s *Site) SignUpForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup", formView{base: base{Member: s.member(r)}})
}

func (s *Site) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m := Member{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Name:     strings.TrimSpace(r.PostForm.Get("username")),
		Rank:     RankPremium,
	}
	if r.PostForm.Get("rank") == string(RankNormal) {
		m.Rank = RankNormal
	}

	if err := validateSignUp(m, r.PostForm.Get("password-confirmation")); err != nil {
		s.render(w, http.StatusBadRequest, "signup", formView{Error: err.Error(), Email: m.Email})
		return
	}

	s.store.SignUp(m)
	s.startSession(w, m.Email)
	http.Redirect(w, r, "mypage.html", http.StatusSeeOther)
}

func validateSignUp(m Member, confirmation string) error {
	switch {
	case m.Email == "" || !strings.Contains(m.Email, "@"):
		return errors.New("メールアドレスを入力してください。")
	case len(m.Password) < 8:
		return errors.New("パスワードは8文字以上で入力してください。")
	case m.Password != confirmation:
		return errors.New("入力されたパスワードと一致しません。")
	case m.Name == "":
		return errors.New("氏名を入力してください。")
	}
	return nil
}

func (s *Site) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", formView{base: base{Member: s.member(r)}})
}

func (s *Site) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	m, ok := s.store.Authenticate(email, r.PostForm.Get("password"))
	if !ok {
		s.render(w, http.StatusOK, "login", formView{Error: LoginFailedMessage, Email: email})
		return
	}

	s.startSession(w, m.Email)
	http.Redirect(w, r, "mypage.html", http.StatusSeeOther)
}

func (s *Site) Logout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	http.Redirect(w, r, "index.html", http.StatusSeeOther)
}

func (s *Site) MyPage(w http.ResponseWriter, r *http.Request) {
	m := s.member(r)
	if m == nil {
		http.Redirect(w, r, "login.html", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "mypage", mypageView{
		base:           base{Member: m},
		ConfirmMessage: DeleteConfirmMessage,
		DeletedMessage: DeletedMessage,
	})
}

func (s *Site) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	m := s.member(r)
	if m == nil {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}
	s.store.Delete(m.Email)
	s.endSession(w, r)
	JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Site) Plans(w http.ResponseWriter, r *http.Request) {
	m := s.member(r)

	view := plansView{base: base{Member: m}}
	for _, p := range reservation.Plans {
		pv := planView{Plan: p}
		switch {
		case p.PremiumOnly:
			if m == nil || m.Rank != RankPremium {
				continue
			}
			pv.Header = reservation.PremiumHeader
		case p.ID == 0:
			pv.Header = "⭐おすすめプラン⭐"
		}
		view.Plans = append(view.Plans, pv)
	}
	s.render(w, http.StatusOK, "plans", view)
}

func (s *Site) plan(w http.ResponseWriter, r *http.Request, raw string) (reservation.Plan, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "invalid plan-id", http.StatusBadRequest)
		return reservation.Plan{}, false
	}
	p, ok := reservation.PlanByID(id)
	if !ok {
		http.NotFound(w, r)
		return reservation.Plan{}, false
	}
	if p.PremiumOnly {
		if m := s.member(r); m == nil || m.Rank != RankPremium {
			http.Error(w, "premium members only", http.StatusForbidden)
			return reservation.Plan{}, false
		}
	}
	return p, true
}

func (s *Site) ReserveForm(w http.ResponseWriter, r *http.Request) {
	p, ok := s.plan(w, r, r.URL.Query().Get("plan-id"))
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "reserve", reserveView{
		base: base{Member: s.member(r)},
		Plan: p,
		Date: reservation.FormatDate(time.Now().AddDate(0, 0, 1)),
	})
}

func (s *Site) Bill(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, ok := s.plan(w, r, q.Get("plan-id"))
	if !ok {
		return
	}

	req, err := parseReservation(p, q)
	if err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	total, err := reservation.Total(req)
	if err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	JSON(w, http.StatusOK, map[string]any{"amount": total, "total": reservation.FormatYen(total)})
}

func (s *Site) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, ok := s.plan(w, r, r.PostForm.Get("plan-id"))
	if !ok {
		return
	}

	req, err := parseReservation(p, r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	total, err := reservation.Total(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contact, err := contactText(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.render(w, http.StatusOK, "confirm", confirmView{
		base:      base{Member: s.member(r)},
		Plan:      p,
		Total:     reservation.FormatYen(total),
		Term:      reservation.Term(req.Start, req.Nights),
		HeadCount: reservation.FormatHeadCount(req.HeadCount),
		AddOns:    req.AddOns.Labels(),
		Username:  strings.TrimSpace(r.PostForm.Get("username")),
		Contact:   contact,
	})
}

func parseReservation(p reservation.Plan, v url.Values) (reservation.Request, error) {
	start, err := reservation.ParseDate(v.Get("date"))
	if err != nil {
		return reservation.Request{}, err
	}
	nights, err := strconv.Atoi(v.Get("term"))
	if err != nil {
		return reservation.Request{}, reservation.ErrInvalidNights
	}
	head, err := strconv.Atoi(v.Get("head-count"))
	if err != nil {
		return reservation.Request{}, reservation.ErrInvalidHeadCount
	}

	req := reservation.Request{
		Plan:      p,
		Start:     start,
		Nights:    nights,
		HeadCount: head,
		AddOns: reservation.AddOns{
			Breakfast:    checked(v, "breakfast"),
			EarlyCheckIn: checked(v, "early-check-in"),
			Sightseeing:  checked(v, "sightseeing"),
		},
	}
	return req, req.Validate()
}

func checked(v url.Values, key string) bool {
	switch v.Get(key) {
	case "on", "true", "1":
		return true
	}
	return false
}

func contactText(v url.Values) (string, error) {
	switch v.Get("contact") {
	case "", "no":
		return "希望しない", nil
	case "email":
		return "メール：" + strings.TrimSpace(v.Get("email")), nil
	case "tel":
		return "電話：" + strings.TrimSpace(v.Get("tel")), nil
	}
	return "", fmt.Errorf("unknown contact %q", v.Get("contact"))
}

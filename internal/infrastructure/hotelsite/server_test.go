package hotelsite

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartAndShutdown(t *testing.T) {
	srv, err := Start("127.0.0.1:0", Options{})
	require.NoError(t, err)

	res, err := http.Get(srv.URL() + "/ja/plans.html")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-srv.Done():
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_AddressInUse(t *testing.T) {
	srv, err := Start("127.0.0.1:0", Options{})
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	_, err = Start(srv.listener.Addr().String(), Options{})
	assert.Error(t, err)
}

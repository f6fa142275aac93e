package location

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locfeed/internal/request"
)

func newLocationServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api.php", nil)
}

func TestClientFetch_RequestShape(t *testing.T) {
	var gotMethod, gotType, gotCountry, gotCT string
	c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.URL.Query().Get("type")
		gotCountry = r.URL.Query().Get("countryId")
		gotCT = r.Header.Get("content-type")
		_, _ = io.WriteString(w, `{"tp":1,"result":{}}`)
	})

	_, err := c.States(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "getStates", gotType)
	assert.Equal(t, "101", gotCountry)
	assert.Equal(t, "application/x-www-form-urlencoded", gotCT)
}

func TestClientFetch_PreservesWireOrder(t *testing.T) {
	c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"tp":1,"result":{"38":"Canada","1":"Afghanistan","101":"India"}}`)
	})

	res, err := c.Countries(context.Background())
	require.NoError(t, err)
	ok, isSuccess := res.(Success)
	require.True(t, isSuccess)
	assert.Equal(t, []Option{
		{ID: "38", Label: "Canada"},
		{ID: "1", Label: "Afghanistan"},
		{ID: "101", Label: "India"},
	}, ok.Options)
}

func TestClientFetch_Failure(t *testing.T) {
	c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"tp":0,"msg":"No state found"}`)
	})

	res, err := c.Cities(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, Failure{Message: "No state found"}, res)
}

func TestClientFetch_LooseTP(t *testing.T) {
	cases := map[string]bool{
		`{"tp":"1","result":{"a":"A"}}`: true,
		`{"tp":true,"result":["A"]}`:    true,
		`{"tp":1.0,"result":{"a":"A"}}`: true,
		`{"tp":"0","msg":"x"}`:          false,
		`{"tp":2,"msg":"x"}`:            false,
		`{"msg":"missing tp"}`:          false,
	}
	for body, want := range cases {
		body, want := body, want
		t.Run(body, func(t *testing.T) {
			c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			res, err := c.Countries(context.Background())
			require.NoError(t, err)
			_, isSuccess := res.(Success)
			assert.Equal(t, want, isSuccess)
		})
	}
}

func TestClientFetch_ArrayResultUsesIndex(t *testing.T) {
	c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"tp":1,"result":["Goa",12]}`)
	})

	res, err := c.Cities(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, Success{Options: []Option{{ID: "0", Label: "Goa"}, {ID: "1", Label: "12"}}}, res)
}

func TestClientFetch_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"tp":1,"result":{"1":"old","2":"B","1":"new"}}`)
	})

	res, err := c.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Success{Options: []Option{{ID: "1", Label: "new"}, {ID: "2", Label: "B"}}}, res)
}

func TestClientFetch_TransportErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		res, err := c.Countries(context.Background())
		assert.Nil(t, res)
		require.Error(t, err)
		assert.True(t, errors.Is(err, request.ErrStatus))
		var re *request.Error
		require.True(t, errors.As(err, &re))
		assert.Equal(t, http.StatusBadGateway, re.Status)
	})

	t.Run("bad json", func(t *testing.T) {
		c := newLocationServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>oops</html>`)
		})
		_, err := c.Countries(context.Background())
		require.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()
		c := NewClient(srv.URL, request.New(&http.Client{Timeout: 20 * time.Millisecond}))
		_, err := c.Countries(context.Background())
		require.Error(t, err)
	})
}

func TestClientFetch_RootWithQuery(t *testing.T) {
	var gotKey, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotType = r.URL.Query().Get("type")
		_, _ = io.WriteString(w, `{"tp":1,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api.php?key=abc", nil)
	_, err := c.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", gotKey)
	assert.Equal(t, "getCountries", gotType)
}

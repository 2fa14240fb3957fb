package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func hashKey(t *testing.T, key string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return string(hash)
}

func serve(mw func(http.Handler) http.Handler, credentials string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if credentials != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
	}

	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr
}

func TestBasicAuth_AllowsValidCredentials(t *testing.T) {
	mw := BasicAuth("LedgerApp", hashKey(t, "LedgerKey001"))

	rr := serve(mw, "LedgerApp:LedgerKey001")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestBasicAuth_RejectsInvalidCredentials(t *testing.T) {
	mw := BasicAuth("LedgerApp", hashKey(t, "LedgerKey001"))

	for _, credentials := range []string{"LedgerApp:WrongKey", "OtherApp:LedgerKey001", ""} {
		rr := serve(mw, credentials)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d for %q, got %d", http.StatusUnauthorized, credentials, rr.Code)
		}
	}
}

func TestBasicAuth_RequiresServerConfiguration(t *testing.T) {
	rr := serve(BasicAuth("LedgerApp", ""), "LedgerApp:LedgerKey001")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

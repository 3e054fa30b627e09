package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yitocode/members-api/internal/password"
	"github.com/yitocode/members-api/internal/repository"
	"github.com/yitocode/members-api/internal/token"
)

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func newAuthHandler() (*AuthHandler, *memIdentityRepo) {
	idents := newMemIdentityRepo()
	iss := token.NewJWTIssuer("secret", time.Hour)
	return NewAuthHandler(idents, iss, 4, ""), idents
}

const signupBody = `{"email":"a@b.com","password":"Xk9#mQ2z","phone_number":"+10000000000","nickname":"abc","name":"A"}`

func TestSignupCreatesIdentity(t *testing.T) {
	h, idents := newAuthHandler()

	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", signupBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if idents.count() != 1 {
		t.Fatalf("store holds %d identities, want 1", idents.count())
	}

	ident, err := idents.FindByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("find created identity: %v", err)
	}
	if ident.PasswordHash == "Xk9#mQ2z" {
		t.Fatal("password stored in the clear")
	}
	if !password.Verify(ident.PasswordHash, "Xk9#mQ2z") {
		t.Fatal("stored hash does not verify the original password")
	}
	if !ident.Roles.Has("user") {
		t.Fatalf("roles = %v, want baseline user", ident.Roles)
	}

	if rec.Header().Get(echo.HeaderAuthorization) == "" {
		t.Fatal("no bearer credential on the signup response")
	}
	var resp authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Credential.Type != "bearer" || resp.Credential.Value == "" {
		t.Fatalf("credential = %+v", resp.Credential)
	}
	if resp.Identity.Email != "a@b.com" {
		t.Fatalf("identity email = %q", resp.Identity.Email)
	}
}

func TestSignupRejectsCommonPassword(t *testing.T) {
	h, idents := newAuthHandler()

	body := `{"email":"a@b.com","password":"letmein1","phone_number":"+10000000000","nickname":"abc","name":"A"}`
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if idents.count() != 0 {
		t.Fatal("identity persisted despite rejected password")
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	h, idents := newAuthHandler()

	body := `{"email":"a@b.com","password":"Xk9#m","phone_number":"+10000000000","nickname":"abc","name":"A"}`
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if idents.count() != 0 {
		t.Fatal("identity persisted despite rejected password")
	}
}

func TestSignupRejectsDuplicate(t *testing.T) {
	h, idents := newAuthHandler()

	if rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d, want 201", rec.Code)
	}

	// Same email, fresh nickname and phone.
	dup := `{"email":"a@b.com","password":"Xk9#mQ2z","phone_number":"+10000000001","nickname":"other","name":"B"}`
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", dup)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("duplicate signup status = %d, want 401", rec.Code)
	}
	if idents.count() != 1 {
		t.Fatalf("store holds %d identities after duplicate signup, want 1", idents.count())
	}
}

func TestSigninUniformRejection(t *testing.T) {
	h, _ := newAuthHandler()
	if rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", rec.Code)
	}

	wrongPass := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"a@b.com","password":"not-the-password"}`)
	unknownEmail := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"nobody@b.com","password":"Xk9#mQ2z"}`)

	if wrongPass.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 / 401", wrongPass.Code, unknownEmail.Code)
	}
	// Identical bodies: callers cannot tell a bad password from a
	// missing account.
	if wrongPass.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("rejection bodies differ:\n%s\n%s", wrongPass.Body.String(), unknownEmail.Body.String())
	}
}

func TestSigninIssuesVerifiableCredential(t *testing.T) {
	h, _ := newAuthHandler()
	if rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", rec.Code)
	}

	rec := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"a@b.com","password":"Xk9#mQ2z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	tok := rec.Header().Get(echo.HeaderAuthorization)
	res, err := h.Issuer.Resolve(context.Background(), tok)
	if err != nil {
		t.Fatalf("issued credential does not resolve: %v", err)
	}
	if res.Identity.Email != "a@b.com" {
		t.Fatalf("resolved email = %q", res.Identity.Email)
	}
}

func TestSignoutIdempotentWithSessions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	idents := newMemIdentityRepo()
	sessions := repository.NewSessionRepo(rdb, "sess", time.Hour)
	iss := token.NewSessionIssuer(sessions, idents, time.Hour)
	h := NewAuthHandler(idents, iss, 4, "")

	if rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", rec.Code)
	}
	rec := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"a@b.com","password":"Xk9#mQ2z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, want 200", rec.Code)
	}

	var sid *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "sid" {
			sid = ck
		}
	}
	if sid == nil || sid.Value == "" {
		t.Fatal("no sid cookie on session-mode signin")
	}

	for i := 0; i < 2; i++ {
		out := doJSON(t, h.Signout, http.MethodPost, "/v1/auth/signout", "", sid)
		if out.Code != http.StatusNoContent {
			t.Fatalf("signout %d status = %d, want 204", i+1, out.Code)
		}
	}
	if _, err := sessions.Find(context.Background(), sid.Value); err == nil {
		t.Fatal("session survived signout")
	}
}

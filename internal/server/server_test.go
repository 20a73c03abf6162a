package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/wizard"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func validApplication(email string) *signup.Application {
	app := signup.NewApplication("enthusiast", wizard.Values{
		signup.FieldEmail:           email,
		signup.FieldPassword:        "midnight-roast",
		signup.FieldConfirmPassword: "midnight-roast",
		signup.FieldLastName:        "山田",
		signup.FieldFirstName:       "花子",
		signup.FieldZipCode:         "150-0001",
		signup.FieldPrefecture:      "東京都",
		signup.FieldCity:            "渋谷区",
		signup.FieldAddress:         "神宮前1-1-1",
		signup.FieldPhone:           "090-1234-5678",
		signup.FieldCardNumber:      "4242424242424242",
		signup.FieldExpiryDate:      "12/28",
		signup.FieldCVV:             "123",
		signup.FieldCardName:        "HANAKO YAMADA",
	})
	return app
}

func postJSON(t *testing.T, url string, body any, header http.Header) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&Config{Port: -1})
	assert.Error(t, err)

	_, err = New(&Config{CertPath: "cert.pem"})
	assert.Error(t, err, "a certificate without a key should be rejected")

	_, err = New(&Config{Catalog: &catalog.Catalog{Version: 99}})
	assert.Error(t, err, "an invalid catalog should be rejected")
}

func TestCatalogEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + CatalogPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Server"), "midnightbrew-server/"))

	cat := decode[catalog.Catalog](t, resp)
	assert.Len(t, cat.Plans, 3)
	assert.Len(t, cat.Testimonials, 6)
}

func TestPlanEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		id         string
		wantStatus int
	}{
		{"discovery", http.StatusOK},
		{"connoisseur", http.StatusOK},
		{"espresso", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := http.Get(ts.URL + PlansPath + tt.id)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.id, decode[catalog.Plan](t, resp).ID)
			}
		})
	}
}

func TestSignup_Accepted(t *testing.T) {
	signupsTotal.Reset()
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+signup.SignupsPath, validApplication("hanako@example.jp"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conf := decode[signup.Confirmation](t, resp)
	assert.NotEmpty(t, conf.ID)
	assert.Equal(t, "enthusiast", conf.PlanID)
	assert.Equal(t, "hanako@example.jp", conf.Email)
	assert.Equal(t, signup.AcceptedMessage, conf.Message)

	assert.Equal(t, 1.0, testutil.ToFloat64(signupsTotal.WithLabelValues(resultAccepted)))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	signupsTotal.Reset()
	_, ts := newTestServer(t, nil)

	first := postJSON(t, ts.URL+signup.SignupsPath, validApplication("taro@example.jp"), nil)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	// Email comparison ignores case
	second := postJSON(t, ts.URL+signup.SignupsPath, validApplication("Taro@Example.jp"), nil)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	body := decode[signup.ErrorResponse](t, second)
	assert.Equal(t, msgDuplicate, body.Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(signupsTotal.WithLabelValues(resultDuplicate)))
}

func TestSignup_IdempotentRetry(t *testing.T) {
	_, ts := newTestServer(t, nil)
	header := http.Header{signup.IdempotencyKeyHeader: []string{"key-1"}}

	first := postJSON(t, ts.URL+signup.SignupsPath, validApplication("jiro@example.jp"), header)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	a := decode[signup.Confirmation](t, first)

	second := postJSON(t, ts.URL+signup.SignupsPath, validApplication("jiro@example.jp"), header)
	require.Equal(t, http.StatusCreated, second.StatusCode)
	b := decode[signup.Confirmation](t, second)

	assert.Equal(t, a.ID, b.ID, "a retry should get the original confirmation")
}

func TestSignup_Invalid(t *testing.T) {
	signupsTotal.Reset()
	_, ts := newTestServer(t, nil)

	app := validApplication("not-an-email")
	app.Payment.CVV = "12"
	app.PlanID = "espresso"

	resp := postJSON(t, ts.URL+signup.SignupsPath, app, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[signup.ErrorResponse](t, resp)
	assert.Equal(t, msgInvalidFields, body.Error)
	assert.Contains(t, body.Fields, signup.FieldEmail)
	assert.Contains(t, body.Fields, signup.FieldCVV)
	assert.Contains(t, body.Fields, "plan")

	assert.Equal(t, 1.0, testutil.ToFloat64(signupsTotal.WithLabelValues(resultInvalid)))
}

func TestSignup_BadJSON(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"plan":`},
		{"unknown field", `{"plan":"discovery","coupon":"FREE"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+signup.SignupsPath, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSignup_WaitsForProcessingDelay(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	_, ts := newTestServer(t, &Config{Clock: clk, SignupDelay: DefaultSignupDelay})

	var (
		wg     sync.WaitGroup
		status int
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		data, _ := json.Marshal(validApplication("delay@example.jp"))
		resp, err := http.Post(ts.URL+signup.SignupsPath, "application/json", bytes.NewReader(data))
		if err != nil {
			t.Errorf("post failed: %v", err)
			return
		}
		defer resp.Body.Close()
		status = resp.StatusCode
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	clk.Advance(DefaultSignupDelay)
	wg.Wait()

	assert.Equal(t, http.StatusCreated, status)
}

func TestSignup_CancelledDuringDelay(t *testing.T) {
	signupsTotal.Reset()
	clk := clock.NewManual(time.Unix(0, 0))
	srv, err := New(&Config{Clock: clk, SignupDelay: time.Minute})
	require.NoError(t, err)

	data, err := json.Marshal(validApplication("gone@example.jp"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, signup.SignupsPath, bytes.NewReader(data)).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Handler().ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1.0, testutil.ToFloat64(signupsTotal.WithLabelValues(resultAborted)))
	assert.False(t, srv.signups.registered("gone@example.jp"))
}

func TestContactEndpoint(t *testing.T) {
	contactMessagesTotal.Reset()
	_, ts := newTestServer(t, nil)

	ok := postJSON(t, ts.URL+contact.Path, &contact.Message{
		Name:    "佐藤",
		Email:   "sato@example.jp",
		Subject: "delivery",
		Body:    "配送日を変更できますか？",
	}, nil)
	require.Equal(t, http.StatusAccepted, ok.StatusCode)
	ack := decode[contact.Ack](t, ok)
	assert.NotEmpty(t, ack.Ticket)
	assert.Equal(t, contact.ThanksMessage, ack.Message)

	bad := postJSON(t, ts.URL+contact.Path, &contact.Message{Name: "佐藤", Subject: "weather"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, bad.StatusCode)
	body := decode[signup.ErrorResponse](t, bad)
	assert.Contains(t, body.Fields, contact.FieldEmail)
	assert.Contains(t, body.Fields, contact.FieldSubject)
	assert.Contains(t, body.Fields, contact.FieldMessage)

	assert.Equal(t, 1.0, testutil.ToFloat64(contactMessagesTotal.WithLabelValues(resultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(contactMessagesTotal.WithLabelValues(resultInvalid)))
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	httpRequestsTotal.Reset()
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + HealthPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nowhere")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET "+HealthPath, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", "404")))

	resp, err = http.Get(ts.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "midnightbrew_http_requests_total")
}

func TestStartAndShutdown(t *testing.T) {
	srv, err := New(&Config{Host: "127.0.0.1", Port: 0})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + HealthPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(DefaultShutdownTimeout):
		t.Fatal("Start did not return after cancellation")
	}
}

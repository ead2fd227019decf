package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/apps/api/echo"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/email"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/pdf"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database/inmem"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/tests"
)

const protectedID = "00000000-0000-0000-0000-00000000a001"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// env is one isolated server with in-memory storage and fake providers.
type env struct {
	conf    *core.Config
	app     *Server
	db      *inmemdb.DB
	usrRepo user.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	gateway *fakeGateway
	synth   *fakeSynthesizer
}

func setup(t *testing.T, configure ...func(*core.Config)) *env {
	conf := core.NewTestConfig()
	conf.Admin.ProtectedIDs = []string{protectedID}
	conf.Admin.ProtectedEmails = []string{"dono@aprovia.app"}
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NewLogger(t)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	assistant.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	gateway := new(fakeGateway)
	synth := new(fakeSynthesizer)

	// set up server
	app := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		UserSvc:         user.NewService(usrRepo, mailSvc, logger, conf),
		VerificationSvc: verification.NewService(inmemdb.NewVerificationRepository(db), mailSvc, logger),
		AssistantSvc:    assistant.NewService(gateway, validate),
		SpeechSvc:       speech.NewService(synth),
		PaymentSvc:      payment.NewService(inmemdb.NewSaleRepository(db), logger),
		RoutinePDF:      pdf.NewRoutineRenderer(conf.AppName),
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
	})

	return &env{
		conf:    conf,
		app:     app,
		db:      db,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		gateway: gateway,
		synth:   synth,
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []assistant.Prompt
}

func (g *fakeGateway) Complete(_ context.Context, p assistant.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, p)
	return g.reply, g.err
}

func (g *fakeGateway) respond(reply string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reply, g.err = reply, err
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	audio string
	err   error
	texts []string
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.audio, s.err
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (e *env) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

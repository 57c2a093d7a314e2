package integration_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kardolus/chatgpt-agent/test"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
)

const (
	expectedToken = "valid-api-key"
	gitVersion    = "v0.0.0-integration"
	exitTimeout   = 60 * time.Second
)

var (
	onceBuild  sync.Once
	binaryPath string
	buildErr   error
)

func buildBinary() error {
	onceBuild.Do(func() {
		binaryPath, buildErr = gexec.Build(
			"github.com/kardolus/chatgpt-agent/cmd/agent",
			"-ldflags",
			fmt.Sprintf("-X main.GitCommit=%s -X main.GitVersion=%s", "integration", gitVersion))
	})
	return buildErr
}

type fixtures struct {
	plan     []byte
	followup []byte
	models   []byte
	authErr  []byte
}

func loadFixtures() fixtures {
	var (
		f   fixtures
		err error
	)
	f.plan, err = test.FileToBytes("plan_completion.json")
	Expect(err).NotTo(HaveOccurred())
	f.followup, err = test.FileToBytes("followup_completion.json")
	Expect(err).NotTo(HaveOccurred())
	f.models, err = test.FileToBytes("models.json")
	Expect(err).NotTo(HaveOccurred())
	f.authErr, err = test.FileToBytes("error.json")
	Expect(err).NotTo(HaveOccurred())
	return f
}

// mockServer serves an OpenAI-compatible API under /v1 and counts the chat
// completion requests it answered.
type mockServer struct {
	*httptest.Server

	mu          sync.Mutex
	completions int
}

func newMockServer(f fixtures) *mockServer {
	s := &mockServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if err := validateRequest(w, r, http.MethodPost); err != nil {
			return
		}
		if err := checkBearerToken(r, expectedToken); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write(f.authErr)
			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.completions++
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if _, jsonMode := body["response_format"]; jsonMode {
			_, _ = w.Write(f.plan)
			return
		}
		_, _ = w.Write(f.followup)
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		if err := validateRequest(w, r, http.MethodGet); err != nil {
			return
		}
		if err := checkBearerToken(r, expectedToken); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write(f.authErr)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(f.models)
	})

	s.Server = httptest.NewServer(mux)
	return s
}

func (s *mockServer) Completions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completions
}

func checkBearerToken(r *http.Request, expectedToken string) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing Authorization header")
	}

	splitToken := strings.Split(authHeader, "Bearer ")
	if len(splitToken) != 2 {
		return errors.New("malformed Authorization header")
	}

	if splitToken[1] != expectedToken {
		return errors.New("invalid token")
	}

	return nil
}

func validateRequest(w http.ResponseWriter, r *http.Request, allowedMethod string) error {
	if r.Method != allowedMethod {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return errors.New("method not allowed")
	}

	if !strings.Contains(r.Header.Get("Authorization"), "Bearer") {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("bad request")
	}

	return nil
}

func runAgent(env []string, stdin string, args ...string) *gexec.Session {
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), env...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	session, err := gexec.Start(cmd, nil, nil)
	Expect(err).NotTo(HaveOccurred())
	Eventually(session, exitTimeout).Should(gexec.Exit())
	return session
}

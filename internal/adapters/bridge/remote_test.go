package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/project"
)

func TestRemote_GetProjects(t *testing.T) {
	var gotEnvelope callRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotEnvelope); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		result, _ := json.Marshal([]project.Project{{ID: "proj-1", Name: "Finance Reports"}})
		json.NewEncoder(w).Encode(callResponse{OK: true, Result: result})
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, WithHTTPClient(srv.Client()))

	projects, err := remote.GetProjects(context.Background())
	if err != nil {
		t.Fatalf("GetProjects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "proj-1" {
		t.Errorf("unexpected projects: %+v", projects)
	}
	if gotEnvelope.Op != OpGetProjects {
		t.Errorf("expected op %s on the wire, got %s", OpGetProjects, gotEnvelope.Op)
	}
	if len(gotEnvelope.Args) != 0 {
		t.Errorf("expected no args, got %d", len(gotEnvelope.Args))
	}
}

func TestRemote_ArgumentsOnTheWire(t *testing.T) {
	var gotEnvelope callRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotEnvelope)
		result, _ := json.Marshal([]struct{}{})
		json.NewEncoder(w).Encode(callResponse{OK: true, Result: result})
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, WithHTTPClient(srv.Client()))

	if _, err := remote.GetFileLogs(context.Background(), "sess-1001", "proj-finance"); err != nil {
		t.Fatalf("GetFileLogs failed: %v", err)
	}
	if gotEnvelope.Op != OpGetFileLogs || len(gotEnvelope.Args) != 2 {
		t.Fatalf("unexpected envelope: %+v", gotEnvelope)
	}
	var sessionID, projectID string
	json.Unmarshal(gotEnvelope.Args[0], &sessionID)
	json.Unmarshal(gotEnvelope.Args[1], &projectID)
	if sessionID != "sess-1001" || projectID != "proj-finance" {
		t.Errorf("arguments lost on the wire: %q %q", sessionID, projectID)
	}
}

func TestRemote_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(callResponse{OK: false, Error: "quota exceeded"})
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, WithHTTPClient(srv.Client()))

	_, err := remote.GetProjects(context.Background())
	if err == nil {
		t.Fatal("expected an error for ok=false")
	}
	if domainErrors.CodeOf(err) != domainErrors.CodeBridge {
		t.Errorf("expected bridge code, got %s", domainErrors.CodeOf(err))
	}
	var sdErr *domainErrors.SyncdeckError
	if !errors.As(err, &sdErr) {
		t.Fatalf("expected a syncdeck error, got %T", err)
	}
}

func TestRemote_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, WithHTTPClient(srv.Client()))

	_, err := remote.GetProjects(context.Background())
	if domainErrors.CodeOf(err) != domainErrors.CodeBridge {
		t.Fatalf("expected bridge code for malformed body, got %v", err)
	}
}

func TestRemote_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	remote := NewRemote(srv.URL)

	_, err := remote.GetProjects(context.Background())
	if domainErrors.CodeOf(err) != domainErrors.CodeBridge {
		t.Fatalf("expected bridge code for unreachable backend, got %v", err)
	}
}

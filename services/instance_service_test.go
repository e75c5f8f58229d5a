package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctfcore/models"

	"github.com/stretchr/testify/require"
)

func TestValidateInstanceShape(t *testing.T) {
	instance, err := validateInstanceShape(
		map[string]interface{}{"host": "10.0.0.4", "port": "31337"},
		[]interface{}{"files/a.zip"},
	)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"host": "10.0.0.4", "port": "31337"}, instance.Params)
	require.Equal(t, []string{"files/a.zip"}, instance.Files)
}

func TestValidateInstanceShapeRejectsBadPayloads(t *testing.T) {
	_, err := validateInstanceShape(nil, nil)
	require.Error(t, err)

	_, err = validateInstanceShape(map[string]interface{}{"port": 31337}, nil)
	require.Error(t, err)

	_, err = validateInstanceShape(map[string]interface{}{}, []interface{}{42})
	require.Error(t, err)
}

func TestHTTPInstanceResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/instance/dynamic", r.URL.Path)
		require.Equal(t, "gen-1", r.URL.Query().Get("generator"))
		require.Equal(t, "team-1", r.URL.Query().Get("team"))
		fmt.Fprint(w, `{"params": {"id": "1337"}, "files": ["files/a.zip"]}`)
	}))
	defer server.Close()

	resolver := NewHTTPInstanceResolver(server.URL)
	instance, err := resolver.ResolveDynamic(context.Background(), "gen-1", "team-1")
	require.NoError(t, err)
	require.Equal(t, "1337", instance.Params["id"])
	require.Equal(t, []string{"files/a.zip"}, instance.Files)
}

func TestHTTPInstanceResolverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewHTTPInstanceResolver(server.URL)
	_, err := resolver.ResolveStatic(context.Background(), "chal-1", "team-1")
	require.Error(t, err)

	unconfigured := NewHTTPInstanceResolver("")
	_, err = unconfigured.ResolveStatic(context.Background(), "chal-1", "team-1")
	require.Error(t, err)
}

type fakeResolver struct {
	instance *ResolvedInstance
	calls    int
}

func (r *fakeResolver) ResolveDynamic(_ context.Context, _ string, _ string) (*ResolvedInstance, error) {
	r.calls++
	return r.instance, nil
}

func (r *fakeResolver) ResolveStatic(_ context.Context, _ string, _ string) (*ResolvedInstance, error) {
	r.calls++
	return r.instance, nil
}

type fakeFileStore struct {
	registered []string
	locations  []string
}

func (s *fakeFileStore) RegisterGeneratedFiles(_ context.Context, _ string, files []string) error {
	s.registered = append(s.registered, files...)
	return nil
}

func (s *fakeFileStore) ListFileLocations(_ context.Context, _ string) ([]string, error) {
	return s.locations, nil
}

func TestMaterializeGeneratedRegistersFiles(t *testing.T) {
	resolver := &fakeResolver{instance: &ResolvedInstance{
		Params: map[string]string{"id": "1337"},
		Files:  []string{"files/generated.zip"},
	}}
	files := &fakeFileStore{locations: []string{"files/static.pdf", "files/generated.zip"}}
	svc := NewInstanceService(resolver, files)

	chal := &models.Challenge{ID: "chal-1", Instanced: true, Generated: true, Generator: "gen-1"}
	instance, err := svc.Materialize(context.Background(), chal, "team-1")
	require.NoError(t, err)
	require.Equal(t, []string{"files/generated.zip"}, files.registered)
	require.Equal(t, []string{"files/static.pdf", "files/generated.zip"}, instance.Files,
		"file list is re-read from storage so static files appear too")
}

func TestMaterializeStatic(t *testing.T) {
	resolver := &fakeResolver{instance: &ResolvedInstance{
		Params: map[string]string{"host": "10.0.0.4"},
		Files:  []string{},
	}}
	files := &fakeFileStore{}
	svc := NewInstanceService(resolver, files)

	chal := &models.Challenge{ID: "chal-1", Instanced: true}
	instance, err := svc.Materialize(context.Background(), chal, "team-1")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.4", instance.Params["host"])
	require.Empty(t, files.registered)
}

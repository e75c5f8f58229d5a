package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"ctfcore/database"
	"ctfcore/models"
)

// ResolvedInstance is the per-team materialization of an instanced
// challenge: parameters for template rendering plus the full file list.
type ResolvedInstance struct {
	Params map[string]string `json:"params"`
	Files  []string          `json:"files"`
}

// InstanceResolver is the contract of the external instancing
// subsystem. Implementations return an error on any internal failure;
// callers treat every error as a resolver fault and fail closed.
type InstanceResolver interface {
	ResolveDynamic(ctx context.Context, generator string, teamID string) (*ResolvedInstance, error)
	ResolveStatic(ctx context.Context, challengeID string, teamID string) (*ResolvedInstance, error)
}

// InstanceFileStore registers generated files and re-reads the
// persisted file list so results stay consistent with storage.
type InstanceFileStore interface {
	RegisterGeneratedFiles(ctx context.Context, challengeID string, files []string) error
	ListFileLocations(ctx context.Context, challengeID string) ([]string, error)
}

// HTTPInstanceResolver resolves instances against the external
// generator service.
type HTTPInstanceResolver struct {
	Address string
	Client  *http.Client
}

func NewHTTPInstanceResolver(address string) *HTTPInstanceResolver {
	return &HTTPInstanceResolver{Address: address, Client: http.DefaultClient}
}

func (r *HTTPInstanceResolver) ResolveDynamic(ctx context.Context, generator string, teamID string) (*ResolvedInstance, error) {
	query := url.Values{"generator": {generator}, "team": {teamID}}
	return r.fetch(ctx, r.Address+"/instance/dynamic?"+query.Encode())
}

func (r *HTTPInstanceResolver) ResolveStatic(ctx context.Context, challengeID string, teamID string) (*ResolvedInstance, error) {
	query := url.Values{"challenge": {challengeID}, "team": {teamID}}
	return r.fetch(ctx, r.Address+"/instance/static?"+query.Encode())
}

func (r *HTTPInstanceResolver) fetch(ctx context.Context, apiURL string) (*ResolvedInstance, error) {
	if r.Address == "" {
		return nil, fmt.Errorf("no instancer address configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch instance: %s", resp.Status)
	}

	var payload struct {
		Params map[string]interface{} `json:"params"`
		Files  []interface{}          `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode instance response: %w", err)
	}

	return validateInstanceShape(payload.Params, payload.Files)
}

// validateInstanceShape enforces the resolver contract at the
// boundary: params must be a string-keyed mapping of strings, files a
// sequence of location strings. Anything else is a resolver fault, not
// a silent coercion.
func validateInstanceShape(params map[string]interface{}, files []interface{}) (*ResolvedInstance, error) {
	if params == nil {
		return nil, fmt.Errorf("instance params missing or not a mapping")
	}

	instance := &ResolvedInstance{Params: make(map[string]string, len(params)), Files: []string{}}
	for key, value := range params {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("instance param %q is not a string", key)
		}
		instance.Params[key] = str
	}

	for i, value := range files {
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("instance file at index %d is not a location string", i)
		}
		instance.Files = append(instance.Files, str)
	}

	return instance, nil
}

// InstanceService materializes instanced challenges, registering any
// newly generated files and caching resolutions per (team, challenge).
type InstanceService struct {
	resolver InstanceResolver
	files    InstanceFileStore
}

func NewInstanceService(resolver InstanceResolver, files InstanceFileStore) *InstanceService {
	return &InstanceService{resolver: resolver, files: files}
}

// Materialize resolves the per-team instance of a challenge. For
// generated challenges the produced files are registered and the file
// list re-read from storage so static and generated files both appear.
// Any returned error is a resolver fault; callers must fail closed.
func (s *InstanceService) Materialize(ctx context.Context, challenge *models.Challenge, teamID string) (*ResolvedInstance, error) {
	cacheKey := "instance:" + teamID + ":" + challenge.ID

	var cached ResolvedInstance
	if found, _ := database.GetFromCache(ctx, cacheKey, &cached); found {
		return &cached, nil
	}

	var instance *ResolvedInstance
	var err error
	if challenge.Generated {
		instance, err = s.resolver.ResolveDynamic(ctx, challenge.Generator, teamID)
		if err != nil {
			return nil, err
		}
		if len(instance.Files) > 0 {
			if err := s.files.RegisterGeneratedFiles(ctx, challenge.ID, instance.Files); err != nil {
				return nil, err
			}
		}
		// Re-read so the result includes static files too
		locations, err := s.files.ListFileLocations(ctx, challenge.ID)
		if err != nil {
			return nil, err
		}
		instance.Files = locations
	} else {
		instance, err = s.resolver.ResolveStatic(ctx, challenge.ID, teamID)
		if err != nil {
			return nil, err
		}
	}

	_ = database.SetToCache(ctx, cacheKey, instance)

	return instance, nil
}

package pinecone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"rag/internal/domain"
)

const defaultControlPlaneURL = "https://api.pinecone.io"

// Provider is a minimal REST client for Pinecone serverless. Index lifecycle
// goes through the control plane; vector operations go through the per-index
// data plane host, which is discovered via describe and cached. Create and
// delete are asynchronous on the provider side, so callers poll Describe.
type Provider struct {
	apiKey     string
	controlURL string
	cloud      string
	region     string
	client     *http.Client

	mu    sync.Mutex
	hosts map[string]string
}

// Config configures the Pinecone client. ControlURL is overridable for tests.
type Config struct {
	APIKeyEnv  string
	Cloud      string
	Region     string
	ControlURL string
	Timeout    time.Duration
}

func New(cfg Config) (*Provider, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}
	if cfg.ControlURL == "" {
		cfg.ControlURL = defaultControlPlaneURL
	}
	if cfg.Cloud == "" {
		cfg.Cloud = "aws"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Provider{
		apiKey:     apiKey,
		controlURL: cfg.ControlURL,
		cloud:      cfg.Cloud,
		region:     cfg.Region,
		client:     &http.Client{Timeout: timeout},
		hosts:      make(map[string]string),
	}, nil
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool `json:"ready"`
	} `json:"status"`
}

type listIndexesResponse struct {
	Indexes []indexDescription `json:"indexes"`
}

type statsResponse struct {
	TotalVectorCount int `json:"totalVectorCount"`
	Dimension        int `json:"dimension"`
}

// wireMetric maps the domain metric names onto Pinecone's. "dot" is spelled
// "dotproduct" on the wire.
func wireMetric(metric domain.Metric) string {
	if metric == domain.MetricDot {
		return "dotproduct"
	}
	return string(metric)
}

func (p *Provider) Create(name string, dimension int, metric domain.Metric) error {
	body := createIndexRequest{
		Name:      name,
		Dimension: dimension,
		Metric:    wireMetric(metric),
		Spec: indexSpec{
			Serverless: serverlessSpec{Cloud: p.cloud, Region: p.region},
		},
	}
	return p.do(http.MethodPost, p.controlURL+"/indexes", body, nil)
}

func (p *Provider) Delete(name string) error {
	err := p.do(http.MethodDelete, p.controlURL+"/indexes/"+name, nil, nil)
	if err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.hosts, name)
	p.mu.Unlock()
	return nil
}

func (p *Provider) List() ([]string, error) {
	var resp listIndexesResponse
	if err := p.do(http.MethodGet, p.controlURL+"/indexes", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Indexes))
	for _, idx := range resp.Indexes {
		names = append(names, idx.Name)
	}
	return names, nil
}

func (p *Provider) Describe(name string) (domain.IndexStats, error) {
	desc, err := p.describeIndex(name)
	if err != nil {
		return domain.IndexStats{}, err
	}

	stats := domain.IndexStats{
		Ready:     desc.Status.Ready,
		Dimension: desc.Dimension,
	}
	if !desc.Status.Ready {
		// The data plane is not reachable before the index is ready.
		return stats, nil
	}

	var st statsResponse
	host := p.hostURL(desc.Host)
	if err := p.do(http.MethodPost, host+"/describe_index_stats", struct{}{}, &st); err != nil {
		return domain.IndexStats{}, err
	}
	stats.VectorCount = st.TotalVectorCount
	return stats, nil
}

type upsertRequest struct {
	Vectors []wireVector `json:"vectors"`
}

type wireVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (p *Provider) Upsert(name string, records []domain.EmbeddingRecord) error {
	host, err := p.dataPlane(name)
	if err != nil {
		return err
	}

	body := upsertRequest{Vectors: make([]wireVector, len(records))}
	for i, rec := range records {
		body.Vectors[i] = wireVector{ID: rec.ID, Values: rec.Vector, Metadata: rec.Metadata}
	}
	return p.do(http.MethodPost, host+"/vectors/upsert", body, nil)
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata,omitempty"`
	} `json:"matches"`
}

func (p *Provider) Query(name string, vector []float32, topK int, includeMetadata bool) ([]domain.RetrievalMatch, error) {
	host, err := p.dataPlane(name)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	req := queryRequest{Vector: vector, TopK: topK, IncludeMetadata: includeMetadata}
	if err := p.do(http.MethodPost, host+"/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.RetrievalMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.RetrievalMatch{
			ChunkID:  m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

func (p *Provider) DeleteAll(name string) error {
	host, err := p.dataPlane(name)
	if err != nil {
		return err
	}
	body := map[string]bool{"deleteAll": true}
	return p.do(http.MethodPost, host+"/vectors/delete", body, nil)
}

func (p *Provider) describeIndex(name string) (indexDescription, error) {
	var desc indexDescription
	err := p.do(http.MethodGet, p.controlURL+"/indexes/"+name, nil, &desc)
	if err != nil {
		return desc, err
	}

	if desc.Host != "" {
		p.mu.Lock()
		p.hosts[name] = desc.Host
		p.mu.Unlock()
	}
	return desc, nil
}

// dataPlane returns the base URL for vector operations on the index,
// describing the index first if the host is not yet known.
func (p *Provider) dataPlane(name string) (string, error) {
	p.mu.Lock()
	host, ok := p.hosts[name]
	p.mu.Unlock()
	if ok {
		return p.hostURL(host), nil
	}

	desc, err := p.describeIndex(name)
	if err != nil {
		return "", err
	}
	if desc.Host == "" {
		return "", fmt.Errorf("index %q has no data plane host yet", name)
	}
	return p.hostURL(desc.Host), nil
}

func (p *Provider) hostURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

func (p *Provider) do(method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("pinecone %s %s: %w", method, url, domain.ErrIndexNotFound)
	}
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		msg := string(data)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return fmt.Errorf("pinecone %s %s returned status %d: %s", method, url, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

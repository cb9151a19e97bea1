// Package catalogserver serves a read-only product and stock API from a fixture file.
package catalogserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Products []domain.Product `json:"products" yaml:"products"`
	Stock    []domain.Stock   `json:"stock" yaml:"stock"`
}

// fixtureProduct mirrors domain.Product for YAML, which has no decimal support.
type fixtureProduct struct {
	ID     int64  `yaml:"id"`
	Title  string `yaml:"title"`
	Price  string `yaml:"price"`
	Image  string `yaml:"image"`
	Amount int    `yaml:"amount"`
}

type fixtureStock struct {
	ID     int64 `yaml:"id"`
	Amount int   `yaml:"amount"`
}

// LoadFixture reads a .json, .yaml or .yml fixture.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var f Fixture
		if err := json.Unmarshal(data, &f); err != nil {
			return Fixture{}, fmt.Errorf("json.Unmarshal: %w", err)
		}
		return f, nil
	case ".yaml", ".yml":
		return parseYAMLFixture(data)
	default:
		return Fixture{}, fmt.Errorf("fixture[%s] has unsupported extension", path)
	}
}

func parseYAMLFixture(data []byte) (Fixture, error) {
	var raw struct {
		Products []fixtureProduct `yaml:"products"`
		Stock    []fixtureStock   `yaml:"stock"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Fixture{}, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	var f Fixture
	for _, p := range raw.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return Fixture{}, fmt.Errorf("product[%d] price[%s] is not valid: %w", p.ID, p.Price, err)
		}
		f.Products = append(f.Products, domain.Product{
			ID:     p.ID,
			Title:  p.Title,
			Price:  price,
			Image:  p.Image,
			Amount: p.Amount,
		})
	}
	for _, s := range raw.Stock {
		f.Stock = append(f.Stock, domain.Stock{ProductID: s.ID, Amount: s.Amount})
	}

	return f, nil
}

type server struct {
	fixture Fixture
	log     logrus.FieldLogger
}

// New returns the API handler: GET /products, /products/{id} and /stock/{id}.
func New(fixture Fixture, log logrus.FieldLogger) http.Handler {
	s := &server{fixture: fixture, log: log}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id}", s.getStock).Methods(http.MethodGet)

	return r
}

func (s *server) listProducts(w http.ResponseWriter, _ *http.Request) {
	products := s.fixture.Products
	if products == nil {
		products = []domain.Product{}
	}
	s.writeJSON(w, http.StatusOK, products)
}

func (s *server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	i := slices.IndexFunc(s.fixture.Products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		s.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	s.writeJSON(w, http.StatusOK, s.fixture.Products[i])
}

func (s *server) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	i := slices.IndexFunc(s.fixture.Stock, func(st domain.Stock) bool { return st.ProductID == id })
	if i < 0 {
		s.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	s.writeJSON(w, http.StatusOK, s.fixture.Stock[i])
}

func (s *server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("id[%s] is not an integer", raw)})
		return 0, false
	}

	return id, true
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request")
	})
}

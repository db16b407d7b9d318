package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"enrolld/internal/agegroup"
)

type AgeGroupHandlerSuite struct {
	suite.Suite
	store  *agegroup.InMemoryStore
	router chi.Router
}

func (s *AgeGroupHandlerSuite) SetupTest() {
	s.store = agegroup.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(agegroup.NewService(s.store), logger).Register(s.router)
}

func TestAgeGroupHandlerSuite(t *testing.T) {
	suite.Run(t, new(AgeGroupHandlerSuite))
}

func (s *AgeGroupHandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AgeGroupHandlerSuite) TestCreateReturnsGroup() {
	rec := s.do(http.MethodPost, "/age-groups", `{"name":"Adulto","min_age":18,"max_age":99}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp groupResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.NotEmpty(resp.ID)
	s.Equal("Adulto", resp.Name)
	s.Equal(18, resp.MinAge)
	s.Equal(99, resp.MaxAge)
}

func (s *AgeGroupHandlerSuite) TestCreateRejectsMissingBounds() {
	rec := s.do(http.MethodPost, "/age-groups", `{"name":"Adulto"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AgeGroupHandlerSuite) TestCreateRejectsMalformedJSON() {
	rec := s.do(http.MethodPost, "/age-groups", `{"name":`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AgeGroupHandlerSuite) TestCreateRejectsOverlapWith409() {
	first := s.do(http.MethodPost, "/age-groups", `{"name":"Jovem","min_age":10,"max_age":20}`)
	s.Require().Equal(http.StatusCreated, first.Code)

	rec := s.do(http.MethodPost, "/age-groups", `{"name":"Adulto","min_age":20,"max_age":40}`)
	s.Require().Equal(http.StatusConflict, rec.Code)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal("age_range_overlap", body["error"])
}

func (s *AgeGroupHandlerSuite) TestListReturnsGroupsSortedByLowerBound() {
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/age-groups", `{"name":"Adulto","min_age":18,"max_age":99}`).Code)
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/age-groups", `{"name":"Crianca","min_age":0,"max_age":12}`).Code)

	rec := s.do(http.MethodGet, "/age-groups", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var groups []groupResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&groups))
	s.Require().Len(groups, 2)
	s.Equal("Crianca", groups[0].Name)
	s.Equal("Adulto", groups[1].Name)
}

func (s *AgeGroupHandlerSuite) TestListEmptyReturnsEmptyArray() {
	rec := s.do(http.MethodGet, "/age-groups", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("[]", strings.TrimSpace(rec.Body.String()))
}

func (s *AgeGroupHandlerSuite) TestDelete() {
	rec := s.do(http.MethodPost, "/age-groups", `{"name":"Adulto","min_age":18,"max_age":99}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp groupResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/age-groups/"+resp.ID, "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/age-groups/"+resp.ID, "").Code)
}

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/okian/quorum/internal/adapters/http/api"
	"github.com/okian/quorum/internal/adapters/repository"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/internal/domain/selection"
	"github.com/okian/quorum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// stubService implements api.Dependencies with canned answers.
type stubService struct {
	askErr  error
	history map[string][]model.UnifiedResponse
}

func (s *stubService) Ask(ctx context.Context, query, userID string) (model.UnifiedResponse, error) {
	if s.askErr != nil {
		return model.UnifiedResponse{}, s.askErr
	}
	return model.UnifiedResponse{
		MergedResponse: model.MergedResponse{
			Content: "answer to " + query,
			Quality: 0.8,
			Sources: []model.BrainID{"planner", "judge"},
		},
		ResponseID:      "resp-1",
		UserID:          userID,
		CreatedAtMillis: 1700000000000,
	}, nil
}

func (s *stubService) AskTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) (model.UnifiedResponse, error) {
	return s.Ask(ctx, query, userID)
}

func (s *stubService) Select(ctx context.Context, query string) ([]model.BrainID, error) {
	return []model.BrainID{"planner", "executor", "judge", "voice"}, nil
}

func (s *stubService) SelectTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) ([]model.BrainID, error) {
	return []model.BrainID{"planner", "judge"}, nil
}

func (s *stubService) Rank(ctx context.Context, query string, complexityLevel float64, userID string) ([]selection.Scored, error) {
	return []selection.Scored{
		{BrainID: "sql", Total: 77.5},
		{BrainID: "planner", Total: 50},
	}, nil
}

func (s *stubService) Recent(ctx context.Context, userID string, limit int) ([]model.UnifiedResponse, error) {
	history, ok := s.history[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if limit > len(history) {
		limit = len(history)
	}
	return history[:limit], nil
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(svc *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(svc, stubStats{})
	server.Register(context.Background(), mux)
	return mux
}

func TestHandleAsk(t *testing.T) {
	Convey("Given the API routes", t, func() {
		svc := &stubService{}
		mux := newTestMux(svc)

		Convey("When posting a valid question", func() {
			body := `{"query":"how do we scale","user_id":"alice"}`
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the unified response is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp model.UnifiedResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Content, ShouldEqual, "answer to how do we scale")
				So(resp.UserID, ShouldEqual, "alice")
				So(len(resp.Sources), ShouldEqual, 2)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{not json"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting without a query", func() {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"user_id":"alice"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting an out-of-range complexity", func() {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q","complexity_level":42}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using GET instead of POST", func() {
			req := httptest.NewRequest(http.MethodGet, "/ask", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When every brain fails", func() {
			svc.askErr = errNoBrain{}
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When the service is not started", func() {
			svc.askErr = errNotStarted{}
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query":"q"}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

type errNoBrain struct{}

func (errNoBrain) Error() string { return "no brain produced an output" }

type errNotStarted struct{}

func (errNotStarted) Error() string { return "service not started" }

func TestHandleGetSelection(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux(&stubService{})

		Convey("When previewing a selection", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection?query=scale+the+db", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the chosen brains are listed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Brains []string `json:"brains"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Brains, ShouldResemble, []string{"planner", "executor", "judge", "voice"})
			})
		})

		Convey("When previewing a capped selection", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection?query=scale&top_n=2&complexity=6", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the capped list is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Brains []string `json:"brains"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Brains, ShouldResemble, []string{"planner", "judge"})
			})
		})

		Convey("When asking for the rank detail", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection?query=scale&detail=rank", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the scored list is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ranked []selection.Scored
				So(json.Unmarshal(rec.Body.Bytes(), &ranked), ShouldBeNil)
				So(len(ranked), ShouldEqual, 2)
				So(ranked[0].BrainID, ShouldEqual, model.BrainID("sql"))
			})
		})

		Convey("When the query parameter is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When top_n is not a number", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection?query=scale&top_n=lots", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When complexity is out of range", func() {
			req := httptest.NewRequest(http.MethodGet, "/selection?query=scale&complexity=99", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHandleGetResponses(t *testing.T) {
	Convey("Given a service with stored history", t, func() {
		svc := &stubService{
			history: map[string][]model.UnifiedResponse{
				"alice": {
					{ResponseID: "r2", UserID: "alice"},
					{ResponseID: "r1", UserID: "alice"},
				},
			},
		}
		mux := newTestMux(svc)

		Convey("When fetching a user's responses", func() {
			req := httptest.NewRequest(http.MethodGet, "/responses/alice", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the history is returned newest first", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var recent []model.UnifiedResponse
				So(json.Unmarshal(rec.Body.Bytes(), &recent), ShouldBeNil)
				So(len(recent), ShouldEqual, 2)
				So(recent[0].ResponseID, ShouldEqual, "r2")
			})
		})

		Convey("When limiting the page size", func() {
			req := httptest.NewRequest(http.MethodGet, "/responses/alice?limit=1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var recent []model.UnifiedResponse
			So(json.Unmarshal(rec.Body.Bytes(), &recent), ShouldBeNil)
			So(len(recent), ShouldEqual, 1)
		})

		Convey("When the user has no history", func() {
			req := httptest.NewRequest(http.MethodGet, "/responses/nobody", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the user id is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/responses/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is invalid", func() {
			req := httptest.NewRequest(http.MethodGet, "/responses/alice?limit=0", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHandleStatsAndHealth(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux(&stubService{})

		Convey("When fetching stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the stats JSON is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldBeTrue)
			})
		})

		Convey("When fetching health metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then Prometheus metrics are served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

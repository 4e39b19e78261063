package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/playmatch/internal/adapters/http/api"
	repository "github.com/okian/playmatch/internal/adapters/repository"
	"github.com/okian/playmatch/internal/domain/model"
	"github.com/okian/playmatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// Mock implementations for testing
type mockRecommender struct {
	result api.Recommendation
	err    error
	calls  []string
}

func (m *mockRecommender) Recommend(_ context.Context, familyID string) (api.Recommendation, error) {
	m.calls = append(m.calls, familyID)
	if m.err != nil {
		return api.Recommendation{}, m.err
	}
	res := m.result
	res.FamilyID = familyID
	return res, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockRecommender{}
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then the default prefix is used", func() {
				So(server.RoutePrefix(), ShouldEqual, "/api/recommendations")
			})

			Convey("And health endpoint should expose metrics", func() {
				req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				req := httptest.NewRequest(http.MethodGet, "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["started"], ShouldEqual, true)
			})

			Convey("And the recommendation endpoint should be routed", func() {
				req := httptest.NewRequest(http.MethodPost, "/api/recommendations/family/F1", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.calls, ShouldResemble, []string{"F1"})
				So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})
		})

		Convey("When registering with a custom prefix", func() {
			custom := api.NewServer(deps, &mockStatsProvider{}, api.WithRoutePrefix("/v2/match/"))
			custom.Register(context.Background(), mux)

			req := httptest.NewRequest(http.MethodPost, "/v2/match/family/F7", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then requests under it reach the handler", func() {
				So(custom.RoutePrefix(), ShouldEqual, "/v2/match")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.calls, ShouldResemble, []string{"F7"})
			})
		})
	})
}

func TestRecommendHandler(t *testing.T) {
	Convey("Given a recommend handler", t, func() {
		team := "T1"
		deps := &mockRecommender{result: api.Recommendation{
			SchoolIDs:      []string{"S2", "S1", "S3"},
			SelectedTeamID: &team,
			Recommendations: []model.School{
				{ID: "S2", Name: "Northfield", Location: json.RawMessage(`{"city":"Duluth"}`)},
				{ID: "S1", Name: "Lakeside"},
				{ID: "S3", Name: "Riverside"},
			},
		}}
		handler := api.NewRecommendHandler(deps, "/api/recommendations/family/", logger.Get())

		serve := func(method, path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			handler.HandleRecommend(w, req)
			return w
		}

		Convey("When handling a valid POST request", func() {
			w := serve(http.MethodPost, "/api/recommendations/family/F1")

			Convey("Then it should return the success envelope", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				body := decode(w)
				So(body["success"], ShouldEqual, true)
				So(body["family_id"], ShouldEqual, "F1")
				So(body["school_ids"], ShouldResemble, []any{"S2", "S1", "S3"})
				So(body["selected_team_id"], ShouldEqual, "T1")
				So(body, ShouldNotContainKey, "reason")
			})

			Convey("And recommendations keep the ranking order and raw location", func() {
				recs := decode(w)["recommendations"].([]any)
				So(len(recs), ShouldEqual, 3)
				first := recs[0].(map[string]any)
				So(first["id"], ShouldEqual, "S2")
				So(first["location"], ShouldResemble, map[string]any{"city": "Duluth"})
			})
		})

		Convey("When the pipeline reports no schools", func() {
			deps.result = api.Recommendation{Reason: "No schools in DB"}
			w := serve(http.MethodPost, "/api/recommendations/family/F1")

			Convey("Then empty lists, a null team and the reason are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"school_ids":[]`)
				So(w.Body.String(), ShouldContainSubstring, `"recommendations":[]`)
				So(w.Body.String(), ShouldContainSubstring, `"selected_team_id":null`)
				So(decode(w)["reason"], ShouldEqual, "No schools in DB")
			})
		})

		Convey("When the family does not exist", func() {
			deps.err = fmt.Errorf("%w: F404", repository.ErrFamilyNotFound)
			w := serve(http.MethodPost, "/api/recommendations/family/F404")

			Convey("Then it should return 404 with the fixed message", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w), ShouldResemble, map[string]any{"error": "Family not found"})
			})
		})

		Convey("When the pipeline fails", func() {
			deps.err = errors.New("ranking oracle is not configured")
			w := serve(http.MethodPost, "/api/recommendations/family/F1")

			Convey("Then it should return 500 with the error message", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w), ShouldResemble, map[string]any{"error": "ranking oracle is not configured"})
			})
		})

		Convey("When handling a non-POST request", func() {
			w := serve(http.MethodGet, "/api/recommendations/family/F1")

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(deps.calls, ShouldBeEmpty)
			})
		})

		Convey("When the family id is missing or nested", func() {
			for _, path := range []string{"/api/recommendations/family/", "/api/recommendations/family/F1/extra"} {
				w := serve(http.MethodPost, path)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}

			Convey("Then the pipeline is not called", func() {
				So(deps.calls, ShouldBeEmpty)
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a handler behind the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
			seen = api.RequestIDFrom(r.Context())
		})

		Convey("When the caller sends an id", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set(api.HeaderRequestID, "req-123")
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then it is echoed and stored", func() {
				So(seen, ShouldEqual, "req-123")
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "req-123")
			})
		})

		Convey("When the caller sends none", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then a uuid is assigned", func() {
				So(len(seen), ShouldEqual, 36)
				So(strings.Count(seen, "-"), ShouldEqual, 4)
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, seen)
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with metrics", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

			Convey("Then the response passes through", func() {
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(w.Body.String(), ShouldEqual, "short and stout")
			})
		})
	})
}

func TestKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.recommend", api.ErrInternal, cause)

		Convey("Then kind and cause are both reachable", func() {
			So(errors.Is(err, api.ErrInternal), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.recommend: internal error: boom")
			So(api.WrapKind("op", api.ErrNotFound, nil).Error(), ShouldEqual, "op: not found")
		})
	})
}

package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/playmatch/internal/adapters/oracle/gemini"
	"github.com/okian/playmatch/internal/domain/ranking"
	"github.com/okian/playmatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// replyWith serves a generateContent response whose only part carries text.
func replyWith(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

type recorded struct {
	path   string
	apiKey string
	body   string
}

func newServer(status int, reply any, delay time.Duration, rec *recorded) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if rec != nil {
			rec.path = r.URL.Path
			rec.apiKey = r.Header.Get("x-goog-api-key")
			rec.body = string(b)
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
}

func sampleRequest() ranking.Request {
	return ranking.NewRequest(
		json.RawMessage(`{"city":"Duluth"}`),
		json.RawMessage(`{"sport":"hockey"}`),
		[]ranking.Candidate{
			{SchoolID: "S1", SchoolName: "North", SchoolLocation: json.RawMessage("null"), Teams: []ranking.TeamRef{}},
			{SchoolID: "S2", SchoolName: "South", SchoolLocation: json.RawMessage("null"), Teams: []ranking.TeamRef{}},
		},
	)
}

func TestNewClient(t *testing.T) {
	Convey("Given client construction", t, func() {
		Convey("When the API key is empty", func() {
			c, err := gemini.NewClient(context.Background(), "")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, gemini.ErrMissingAPIKey), ShouldBeTrue)
				So(c, ShouldBeNil)
			})
		})

		Convey("When a model is configured", func() {
			c, err := gemini.NewClient(context.Background(), "k", gemini.WithModel("gemini-test"))

			Convey("Then the model is used", func() {
				So(err, ShouldBeNil)
				So(c.Model(), ShouldEqual, "gemini-test")
			})
		})
	})
}

func TestClientRank(t *testing.T) {
	Convey("Given a Gemini client against a fake endpoint", t, func() {
		ctx := context.Background()

		Convey("When the model returns a JSON array", func() {
			rec := &recorded{}
			srv := newServer(http.StatusOK, replyWith(`["S2","S1","S9"]`), 0, rec)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "test-key",
				gemini.WithBaseURL(srv.URL),
				gemini.WithModel("gemini-test"),
				gemini.WithHTTPClient(srv.Client()),
			)
			So(err, ShouldBeNil)

			ids, err := c.Rank(ctx, sampleRequest())

			Convey("Then the proposed ids are returned unsanitized", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"S2", "S1", "S9"})
			})

			Convey("And the request carries the rubric, payload and credentials", func() {
				So(rec.path, ShouldContainSubstring, "gemini-test:generateContent")
				So(rec.apiKey, ShouldEqual, "test-key")
				So(rec.body, ShouldContainSubstring, "Safety")
				So(rec.body, ShouldContainSubstring, "school_id")
				So(rec.body, ShouldContainSubstring, "application/json")
			})
		})

		Convey("When the model wraps the array in a code fence", func() {
			srv := newServer(http.StatusOK, replyWith("```json\n[\"S1\"]\n```"), 0, nil)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "k", gemini.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			ids, err := c.Rank(ctx, sampleRequest())

			Convey("Then the fence is tolerated", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"S1"})
			})
		})

		Convey("When the model returns prose", func() {
			srv := newServer(http.StatusOK, replyWith("I recommend North."), 0, nil)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "k", gemini.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			ids, err := c.Rank(ctx, sampleRequest())

			Convey("Then a malformed ranking error is returned", func() {
				So(errors.Is(err, ranking.ErrMalformedRanking), ShouldBeTrue)
				So(ids, ShouldBeNil)
			})
		})

		Convey("When the model explains itself after the array", func() {
			srv := newServer(http.StatusOK, replyWith(`["S3","S2","S1"] because S3 is closest.`), 0, nil)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "k", gemini.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			ids, err := c.Rank(ctx, sampleRequest())

			Convey("Then the reply is rejected as malformed", func() {
				So(errors.Is(err, ranking.ErrMalformedRanking), ShouldBeTrue)
				So(ids, ShouldBeNil)
			})
		})

		Convey("When the endpoint fails", func() {
			reply := map[string]any{"error": map[string]any{"code": 500, "message": "boom", "status": "INTERNAL"}}
			srv := newServer(http.StatusInternalServerError, reply, 0, nil)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "k", gemini.WithBaseURL(srv.URL))
			So(err, ShouldBeNil)
			_, err = c.Rank(ctx, sampleRequest())

			Convey("Then a request error is returned", func() {
				So(errors.Is(err, gemini.ErrOracleRequest), ShouldBeTrue)
				So(strings.Contains(err.Error(), "gemini request failed"), ShouldBeTrue)
			})
		})

		Convey("When the endpoint is slower than the timeout", func() {
			srv := newServer(http.StatusOK, replyWith(`["S1"]`), 2*time.Second, nil)
			defer srv.Close()

			c, err := gemini.NewClient(ctx, "k",
				gemini.WithBaseURL(srv.URL),
				gemini.WithTimeout(50*time.Millisecond),
			)
			So(err, ShouldBeNil)

			start := time.Now()
			_, err = c.Rank(ctx, sampleRequest())

			Convey("Then the call is abandoned", func() {
				So(errors.Is(err, gemini.ErrOracleRequest), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, time.Second)
			})
		})
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MAximeXX/AIEval/internal/data/repos/testutil"
	"github.com/MAximeXX/AIEval/internal/realtime"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)

	cases := []struct {
		name     string
		closeDB  bool
		want     int
		database string
	}{
		{"db up", false, http.StatusOK, "ok"},
		{"db closed", true, http.StatusServiceUnavailable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.DB(t)
			if tc.closeDB {
				sqlDB, err := db.DB()
				if err != nil {
					t.Fatalf("sql db: %v", err)
				}
				_ = sqlDB.Close()
			}
			hub := realtime.NewHub(log, realtime.HubOptions{})
			t.Cleanup(hub.Drain)

			r := gin.New()
			r.GET("/health", NewHealthHandler(db, hub).HealthCheck)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, rec.Code, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tc.database != "" && body["database"] != tc.database {
				t.Fatalf("database: want=%s got=%v", tc.database, body["database"])
			}
			if body["realtime_clients"] != float64(0) {
				t.Fatalf("realtime_clients: want=0 got=%v", body["realtime_clients"])
			}
		})
	}
}

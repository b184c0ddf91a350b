// Mock grading service for local development. Scores are a deterministic
// function of the answer text so repeated grading is reproducible; FAIL_RATE
// makes a fraction of requests return 503 to exercise the degraded path.
package main

import (
	"encoding/json"
	"hash/fnv"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
)

const defaultPort = "8091"

type gradeRequest struct {
	QuizTitle string `json:"quiz_title"`
	Answer    string `json:"answer"`
}

func main() {
	port := getEnv("PORT", defaultPort)
	failRate := getEnvFloat("FAIL_RATE", "0")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /v1/grade", func(w http.ResponseWriter, r *http.Request) {
		if failRate > 0 && rand.Float64() < failRate {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "grading backend overloaded"})
			return
		}
		var req gradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed grade request"})
			return
		}

		// longer answers score better, hash adds stable per-answer jitter
		h := fnv.New32a()
		_, _ = h.Write([]byte(req.Answer))
		score := min(len(req.Answer), 60) + int(h.Sum32()%41)
		if score > 100 {
			score = 100
		}
		log.Printf("grade: quiz=%q len=%d score=%d", req.QuizTitle, len(req.Answer), score)
		writeJSON(w, http.StatusOK, map[string]int{"score": score})
	})

	log.Printf("mock grading service listening on :%s (fail rate: %.2f)", port, failRate)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key, fallback string) float64 {
	v := getEnv(key, fallback)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return f
}

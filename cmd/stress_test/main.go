package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "http://localhost:8080"
	totalItems     = 50
	finalQuantity  = 7
)

type item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) do(method, path string, body any, out any) (int, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = b
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}

	if status, err := c.do(http.MethodGet, "/health", nil, nil); err != nil || status != http.StatusOK {
		log.Fatalf("server not healthy at %s: status=%d err=%v", baseURL, status, err)
	}

	runID := uuid.NewString()[:8]
	ids := make([]int64, totalItems)

	var created, updated, verified, deleted, gone atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalItems; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			var it item
			status, err := c.do(http.MethodPost, "/inventory/", map[string]any{
				"name":       fmt.Sprintf("stress-%s-%d", runID, n),
				"quantity":   n,
				"unit_price": 1.25,
			}, &it)
			if err != nil || status != http.StatusCreated {
				log.Printf("create %d: status=%d err=%v", n, status, err)
				return
			}
			created.Add(1)
			ids[n] = it.ID
			path := fmt.Sprintf("/inventory/%d", it.ID)

			status, err = c.do(http.MethodPut, path, map[string]any{"quantity": finalQuantity}, nil)
			if err != nil || status != http.StatusOK {
				log.Printf("update %d: status=%d err=%v", it.ID, status, err)
				return
			}
			updated.Add(1)

			var got item
			status, err = c.do(http.MethodGet, path, nil, &got)
			if err == nil && status == http.StatusOK && got.Quantity == finalQuantity && got.Name == it.Name {
				verified.Add(1)
			}
		}(i)
	}
	wg.Wait()

	var listed []item
	if _, err := c.do(http.MethodGet, "/inventory/", nil, &listed); err != nil {
		log.Printf("list: %v", err)
	}
	present := map[int64]int{}
	for _, it := range listed {
		present[it.ID]++
	}
	var listedOnce int
	for _, id := range ids {
		if id != 0 && present[id] == 1 {
			listedOnce++
		}
	}

	for _, id := range ids {
		if id == 0 {
			continue
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()

			path := fmt.Sprintf("/inventory/%d", id)
			if status, err := c.do(http.MethodDelete, path, nil, nil); err == nil && status == http.StatusOK {
				deleted.Add(1)
			}
			if status, err := c.do(http.MethodGet, path, nil, nil); err == nil && status == http.StatusNotFound {
				gone.Add(1)
			}
		}(id)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Items:            %d\n", totalItems)
	fmt.Printf("Created:          %d\n", created.Load())
	fmt.Printf("Updated:          %d\n", updated.Load())
	fmt.Printf("Verified:         %d\n", verified.Load())
	fmt.Printf("Listed once:      %d\n", listedOnce)
	fmt.Printf("Deleted:          %d\n", deleted.Load())
	fmt.Printf("Gone after del:   %d\n", gone.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	check := func(label string, got int) {
		if got == totalItems {
			fmt.Printf("PASS: %s %d/%d\n", label, got, totalItems)
		} else {
			fmt.Printf("FAIL: %s %d/%d\n", label, got, totalItems)
		}
	}
	check("created", int(created.Load()))
	check("partial updates read back", int(verified.Load()))
	check("listed exactly once", listedOnce)
	check("deleted", int(deleted.Load()))
	check("404 after delete", int(gone.Load()))
}

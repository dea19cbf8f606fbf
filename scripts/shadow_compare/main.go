// Command shadow_compare replays read-only roster requests against the Go
// API and the legacy planner side by side during cutover. Critical targets
// must match byte for byte (after JSON normalisation); optional targets only
// report their drift.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target          target
	PlannerStatus   int
	RosterStatus    int
	StatusMatch     bool
	BodyMatch       bool
	Err             error
	RosterDuration  time.Duration
	PlannerDuration time.Duration
}

// volatileFields differ on every response and never signal real drift.
var volatileFields = map[string]bool{
	"generated_at": true,
	"meta":         true,
}

func main() {
	var (
		rosterBase  string
		plannerBase string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&rosterBase, "roster-base", "http://localhost:8080", "Go roster API base URL")
	flag.StringVar(&plannerBase, "planner-base", "http://localhost:8501", "legacy planner base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results      []result
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		res := compare(client, rosterBase, plannerBase, t)
		if res.Err != nil || !res.StatusMatch || !res.BodyMatch {
			if t.Critical {
				breaking++
			} else if res.Err == nil {
				optionalDiff++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf targetFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}
	if len(tf.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return tf.Targets, nil
}

func compare(client *http.Client, rosterBase, plannerBase string, tgt target) result {
	res := result{Target: tgt}

	rosterResp, rosterDur, err := request(client, rosterBase, tgt)
	res.RosterDuration = rosterDur
	if err != nil {
		res.Err = fmt.Errorf("roster request failed: %w", err)
		return res
	}
	defer rosterResp.Body.Close()

	plannerResp, plannerDur, err := request(client, plannerBase, tgt)
	res.PlannerDuration = plannerDur
	if err != nil {
		res.Err = fmt.Errorf("planner request failed: %w", err)
		return res
	}
	defer plannerResp.Body.Close()

	res.RosterStatus = rosterResp.StatusCode
	res.PlannerStatus = plannerResp.StatusCode
	res.StatusMatch = res.RosterStatus == res.PlannerStatus

	rosterBody, err := io.ReadAll(rosterResp.Body)
	if err != nil {
		res.Err = fmt.Errorf("read roster body: %w", err)
		return res
	}
	plannerBody, err := io.ReadAll(plannerResp.Body)
	if err != nil {
		res.Err = fmt.Errorf("read planner body: %w", err)
		return res
	}

	res.BodyMatch = bodiesEqual(rosterBody, plannerBody)
	return res
}

func request(client *http.Client, base string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

// normalize strips volatile fields and collapses float64 integers so the two
// backends' JSON encoders compare equal.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range val {
			if volatileFields[k] {
				delete(val, k)
			}
		}
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []result) {
	fmt.Println("Winterplan Shadow Report")
	fmt.Println("========================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Roster: %d (%s) | Planner: %d (%s)\n", res.RosterStatus, res.RosterDuration, res.PlannerStatus, res.PlannerDuration)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}

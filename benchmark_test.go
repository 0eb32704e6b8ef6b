package deprecier_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-pkgs/deprecier"
	_ "github.com/git-pkgs/deprecier/all"
)

// Mock packument with many versions, the shape of a long-lived npm package.
func npmResponse(majors, minors int) map[string]interface{} {
	versions := map[string]interface{}{}
	times := map[string]string{}
	for major := 0; major < majors; major++ {
		for minor := 0; minor < minors; minor++ {
			for _, v := range []string{
				fmt.Sprintf("%d.%d.0-rc.1", major, minor),
				fmt.Sprintf("%d.%d.0", major, minor),
			} {
				versions[v] = map[string]interface{}{"name": "lodash", "version": v}
				times[v] = fmt.Sprintf("20%02d-%02d-01T00:00:00.000Z", 10+major, 1+minor%12)
			}
		}
	}
	return map[string]interface{}{
		"name":     "lodash",
		"versions": versions,
		"time":     times,
	}
}

func versionList(majors, minors int) []string {
	var out []string
	for major := 0; major < majors; major++ {
		for minor := 0; minor < minors; minor++ {
			out = append(out, fmt.Sprintf("%d.%d.0-rc.1", major, minor), fmt.Sprintf("%d.%d.0", major, minor))
		}
	}
	return out
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = deprecier.New("npm", "", nil)
	}
}

func BenchmarkApplyRules_Default(b *testing.B) {
	raws := versionList(20, 20)
	rules := deprecier.DefaultRules()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = deprecier.ApplyRules(raws, rules)
	}
}

func BenchmarkApplyRules_Ranges(b *testing.B) {
	raws := versionList(20, 20)
	rules := []deprecier.RuleEntry{
		{Rule: "deprecate-range", Options: map[string]any{"range": "<1.0.0"}},
		{Rule: "support-range", Options: map[string]any{"range": ">=15.0.0 <18.0.0"}},
		{Rule: "support-latest", Options: map[string]any{"count": 3, "granularity": "minor"}},
		{Rule: "deprecate-all"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = deprecier.ApplyRules(raws, rules)
	}
}

func BenchmarkParseVersion(b *testing.B) {
	inputs := []string{"1.2.3", "v4.17.21", "1.0.0-beta.11+sha.5114f85", "10.20.30-rc.1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = deprecier.ParseVersion(inputs[i%len(inputs)])
	}
}

func BenchmarkFetchPackageInfo_npm(b *testing.B) {
	resp := npmResponse(10, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"lodash"}`), 0o644); err != nil {
		b.Fatal(err)
	}

	reg, _ := deprecier.New("npm", server.URL, deprecier.DefaultClient())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.FetchPackageInfo(ctx, dir, nil)
	}
}

func BenchmarkPublish_DryRun(b *testing.B) {
	resp := npmResponse(10, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"lodash"}`), 0o644); err != nil {
		b.Fatal(err)
	}

	reg, _ := deprecier.New("npm", server.URL, deprecier.DefaultClient())
	d := deprecier.NewDeprecier(reg)
	if err := d.VerifyConditions(context.Background(), nil); err != nil {
		b.Fatal(err)
	}
	run := deprecier.RunContext{Cwd: dir, DryRun: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Publish(context.Background(), run)
	}
}

func BenchmarkBuildURLs(b *testing.B) {
	reg, _ := deprecier.New("npm", "", nil)
	urls := reg.URLs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = deprecier.BuildURLs(urls, "lodash", "4.17.21")
	}
}

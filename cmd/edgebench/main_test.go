package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/edgebench/pkg/config"
	"github.com/Fepozopo/edgebench/pkg/filters"
	"github.com/Fepozopo/edgebench/pkg/raster"
)

func TestSplitArgs(t *testing.T) {
	got := splitArgs(" variance, ,7 ")
	if len(got) != 3 || got[0] != "variance" || got[1] != "" || got[2] != "7" {
		t.Fatalf("splitArgs = %q", got)
	}
	if splitArgs("  ") != nil {
		t.Fatal("blank args should be nil")
	}
}

func TestBatchWritesOutputAndLogsMetrics(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	img, _ := raster.New(16, 16, 3, raster.DomainByte)
	for i := range img.Pix {
		img.Pix[i] = float64(i * 7 % 256)
	}
	if err := raster.Save(in, img); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	log := initLogger(false, &logs)
	out := filepath.Join(dir, "out.png")
	engine := filters.NewEngine(config.DefaultConfig(), log)
	if err := batch(engine, in, filters.NameKuwahara, []string{"5"}, out, log); err != nil {
		t.Fatalf("batch: %v", err)
	}
	got, _, err := raster.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Width != 16 || got.Height != 16 {
		t.Fatalf("output %dx%d", got.Width, got.Height)
	}
	var entry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "image written" || entry["psnr"] == nil || entry["ssim"] == nil {
		t.Fatalf("log entry = %v", entry)
	}
}

func TestBatchNeedsPaths(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if err := batch(filters.NewEngine(nil, log), "", filters.NameKuwahara, nil, "", log); err == nil {
		t.Fatal("expected error without -in and -out")
	}
}

func TestRunListAndBadFlag(t *testing.T) {
	var buf bytes.Buffer
	if code := run([]string{"-list"}, &buf); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(buf.String(), filters.NamePortraitArtistic) {
		t.Fatalf("list output = %q", buf.String())
	}
	buf.Reset()
	if code := run([]string{"-bogus"}, &buf); code != 2 {
		t.Fatalf("bad flag exit code %d", code)
	}
}

func TestRunInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "edgebench.yaml")
	if code := run([]string{"-init-config", "-config", path}, io.Discard); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kuwahara.KernelSize != 11 {
		t.Fatalf("kernel size = %d", cfg.Kuwahara.KernelSize)
	}
}

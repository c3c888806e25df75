package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssmith-git/jwst/internal/ami"
	"github.com/ssmith-git/jwst/internal/association"
	"github.com/ssmith-git/jwst/internal/datamodel"
	"github.com/ssmith-git/jwst/internal/pipeline"
)

func writeTestExposure(t *testing.T, dir, name string, freq, amp float64) {
	t.Helper()
	// A sinusoid plus a ramp: the ramp spreads power over every spatial
	// frequency so no baseline amplitude ends up at zero.
	pixels := make([]float64, 256)
	for i := range pixels {
		pixels[i] = amp*math.Sin(2*math.Pi*freq*float64(i)/256) + 0.2*float64(i)/256
	}
	data, err := json.Marshal(ami.Exposure{Name: name, Pixels: pixels})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func runRealPipeline(t *testing.T, inputDir, outputDir string, asn *association.Association, opts pipeline.Options) *pipeline.Outcome {
	t.Helper()

	store, err := datamodel.NewFileStore(outputDir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	stages := pipeline.Stages{
		Analyzer:   ami.NewAnalyzeStage(inputDir, testLogger()),
		Averager:   ami.NewAverageStage(store, testLogger()),
		Normalizer: ami.NewNormalizeStage(testLogger()),
		Blender:    datamodel.NewBlender(store, testLogger()),
		Persister:  store,
	}

	outcome, err := pipeline.NewController(stages, opts, testLogger(), nil).Run(context.Background(), asn)
	if err != nil {
		t.Fatal(err)
	}
	return outcome
}

func TestPipelineEndToEnd(t *testing.T) {
	inputDir := t.TempDir()
	writeTestExposure(t, inputDir, "sci1_cal", 3, 1.0)
	writeTestExposure(t, inputDir, "sci2_cal", 3, 1.1)
	writeTestExposure(t, inputDir, "psf1_cal", 3, 0.9)

	asn := &association.Association{
		ID:        "a3001",
		Pool:      "jw00042_pool",
		TableName: "jw00042_asn.json",
		Products: []association.Product{{
			Name: "jw00042-a3001_nis",
			Members: []association.Member{
				{ExpName: "sci1_cal", ExpType: "science"},
				{ExpName: "psf1_cal", ExpType: "psf"},
				{ExpName: "sci2_cal", ExpType: "science"},
			},
		}},
	}

	opts := pipeline.DefaultOptions()
	opts.SaveAverages = true
	outputDir := t.TempDir()
	outcome := runRealPipeline(t, inputDir, outputDir, asn, opts)

	if outcome.Status != pipeline.StatusCompleted || !outcome.Normalized {
		t.Fatalf("outcome = %+v", outcome)
	}

	wantFiles := []string{
		"sci1_cal_ami.json",
		"sci2_cal_ami.json",
		"psf1_cal_ami.json",
		"jw00042-a3001_nis_psf-amiavg.json",
		"jw00042-a3001_nis_amiavg.json",
		"jw00042-a3001_nis_aminorm.json",
	}
	for _, name := range wantFiles {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("missing product %s: %v", name, err)
		}
	}

	// Lineage of the normalized product is the two aggregates, science
	// first.
	data, err := os.ReadFile(filepath.Join(outputDir, "jw00042-a3001_nis_aminorm.json"))
	if err != nil {
		t.Fatal(err)
	}
	var norm datamodel.AmiResult
	if err := json.Unmarshal(data, &norm); err != nil {
		t.Fatal(err)
	}
	wantInputs := []string{"jw00042-a3001_nis_amiavg", "jw00042-a3001_nis_psf-amiavg"}
	if len(norm.Meta.Inputs) != 2 || norm.Meta.Inputs[0] != wantInputs[0] || norm.Meta.Inputs[1] != wantInputs[1] {
		t.Errorf("normalized lineage = %v, want %v", norm.Meta.Inputs, wantInputs)
	}
	if norm.Meta.PoolName != "jw00042_pool" || norm.Meta.TableName != "jw00042_asn.json" {
		t.Errorf("normalized provenance = %+v", norm.Meta)
	}

	// The averaged science lineage lists the member artifacts in member
	// order.
	data, err = os.ReadFile(filepath.Join(outputDir, "jw00042-a3001_nis_amiavg.json"))
	if err != nil {
		t.Fatal(err)
	}
	var avg datamodel.AmiResult
	if err := json.Unmarshal(data, &avg); err != nil {
		t.Fatal(err)
	}
	if len(avg.Meta.Inputs) != 2 || avg.Meta.Inputs[0] != "sci1_cal_ami" || avg.Meta.Inputs[1] != "sci2_cal_ami" {
		t.Errorf("science average lineage = %v", avg.Meta.Inputs)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	inputDir := t.TempDir()
	writeTestExposure(t, inputDir, "sci1_cal", 4, 1.0)
	writeTestExposure(t, inputDir, "psf1_cal", 4, 0.8)

	makeAsn := func() *association.Association {
		return &association.Association{
			ID:        "a1",
			Pool:      "pool",
			TableName: "asn.json",
			Products: []association.Product{{
				Name: "prod",
				Members: []association.Member{
					{ExpName: "sci1_cal", ExpType: "science"},
					{ExpName: "psf1_cal", ExpType: "psf"},
				},
			}},
		}
	}

	out1 := t.TempDir()
	out2 := t.TempDir()
	runRealPipeline(t, inputDir, out1, makeAsn(), pipeline.DefaultOptions())
	runRealPipeline(t, inputDir, out2, makeAsn(), pipeline.DefaultOptions())

	first, err := os.ReadFile(filepath.Join(out1, "prod_aminorm.json"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(out2, "prod_aminorm.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-running on an unchanged association must produce identical normalized output")
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/platechanges/internal/adapters/modelfile"
	"github.com/okian/platechanges/internal/adapters/repository"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
)

const building = `
levels:
  - {id: l1, name: First Floor, elevation: 0}
  - {id: l2, name: Second Floor, elevation: 10}
  - {id: l3, name: Third Floor, elevation: 20}
  - {id: roof, name: Roof, elevation: 30}
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeBuilding(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "building.yaml")
	if err := os.WriteFile(path, []byte(building), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestLevelsCommand(t *testing.T) {
	convey.Convey("Given a model file", t, func() {
		path := writeBuilding(t)

		convey.Convey("When listing levels", func() {
			out, _, err := runCLI(t, "levels", "--model", path)

			convey.Convey("Then adjustable levels are printed with formatted elevations", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Second Floor")
				convey.So(out, convey.ShouldContainSubstring, `30'-0"`)
				convey.So(out, convey.ShouldNotContainSubstring, "First Floor")
			})
		})

		convey.Convey("When --model is missing", func() {
			_, _, err := runCLI(t, "levels")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestCheckCommand(t *testing.T) {
	convey.Convey("Given a model file", t, func() {
		path := writeBuilding(t)

		convey.Convey("When the adjustments keep the order", func() {
			out, _, err := runCLI(t, "check", "-m", path, "--set", "Second Floor=+1", "--set", "l3=0.5")

			convey.Convey("Then it says so", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Level order holds for 2 adjusted level(s).")
			})
		})

		convey.Convey("When a level would pass the one above", func() {
			out, _, err := runCLI(t, "check", "-m", path, "--set", "l2=15")

			convey.Convey("Then the report is printed and the run fails", func() {
				convey.So(errors.Is(err, errViolations), convey.ShouldBeTrue)
				convey.So(out, convey.ShouldContainSubstring,
					`Second Floor (25'-0") would be higher than Third Floor (20'-0"). Do you want to proceed anyway?`)
			})
		})

		convey.Convey("When the delta is not finite", func() {
			_, _, err := runCLI(t, "check", "-m", path, "--set", "l2=NaN")
			convey.So(errors.Is(err, ordering.ErrInvalidInput), convey.ShouldBeTrue)
		})

		convey.Convey("When the level is unknown", func() {
			_, _, err := runCLI(t, "check", "-m", path, "--set", "Basement=1")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestApplyCommand(t *testing.T) {
	convey.Convey("Given a model file", t, func() {
		path := writeBuilding(t)

		convey.Convey("When applying a clean batch", func() {
			out, _, err := runCLI(t, "apply", "-m", path, "-s", "roof=1.25")

			convey.Convey("Then the summary and adjusted model are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "1 level was adjusted.")
				convey.So(out, convey.ShouldContainSubstring, "elevation: 31.25")
			})
		})

		convey.Convey("When applying an inverting batch without force", func() {
			out, _, err := runCLI(t, "apply", "-m", path, "-s", "l3=-15")

			convey.Convey("Then nothing is written", func() {
				convey.So(errors.Is(err, errViolations), convey.ShouldBeTrue)
				convey.So(out, convey.ShouldContainSubstring, "Re-run with --force")
			})
		})

		convey.Convey("When forcing an inverting batch to a file", func() {
			dst := filepath.Join(t.TempDir(), "out.yaml")
			out, _, err := runCLI(t, "apply", "-m", path, "-s", "l3=-15", "--force", "-o", dst)

			convey.Convey("Then the adjusted model is written there", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "1 level was adjusted.")
				lvls, err := modelfile.Load(dst)
				convey.So(err, convey.ShouldBeNil)
				convey.So(lvls, convey.ShouldContain, model.Level{ID: "l3", Name: "Third Floor", Elevation: 5})
			})
		})
	})
}

func TestParseSets(t *testing.T) {
	convey.Convey("Given levels with a repeated name", t, func() {
		lvls := []model.Level{
			{ID: "a", Name: "Mezzanine"},
			{ID: "b", Name: "Mezzanine"},
			{ID: "c", Name: "Roof"},
		}

		convey.Convey("Then ids and unique names resolve", func() {
			deltas, err := parseSets(lvls, []string{"a=1", "Roof = 2"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(deltas, convey.ShouldResemble, map[string]string{"a": "1", "c": "2"})
		})

		convey.Convey("Then an ambiguous name is rejected", func() {
			_, err := parseSets(lvls, []string{"Mezzanine=1"})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then a malformed flag is rejected", func() {
			_, err := parseSets(lvls, []string{"=1"})
			convey.So(err, convey.ShouldNotBeNil)
			_, err = parseSets(lvls, []string{"Roof"})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

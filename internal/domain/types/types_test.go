package types_test

import (
	"testing"

	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
	types "github.com/okian/platechanges/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewLevel(t *testing.T) {
	Convey("Given a model level", t, func() {
		l := model.Level{ID: "l2", Name: "Second Floor", Elevation: 10 + 6.25/12}

		Convey("When converting it to the read shape", func() {
			got := types.NewLevel(l)

			Convey("Then the elevation is rendered for display", func() {
				So(got.ID, ShouldEqual, "l2")
				So(got.Name, ShouldEqual, "Second Floor")
				So(got.Elevation, ShouldEqual, l.Elevation)
				So(got.Display, ShouldEqual, `10'-6 2/8"`)
			})
		})
	})
}

func TestNewOutcome(t *testing.T) {
	Convey("Given a validated batch", t, func() {
		b, err := ordering.NewBatch(
			ordering.Adjustment{LevelID: "a", Name: "Mezzanine", Current: 0, Delta: 10},
			ordering.Adjustment{LevelID: "b", Name: "Second Floor", Current: 5},
		)
		So(err, ShouldBeNil)
		res := ordering.NewValidator().Check(b)

		Convey("When building an outcome", func() {
			out := types.NewOutcome(b, res)

			Convey("Then violations are flattened with their messages", func() {
				So(out.OK, ShouldBeFalse)
				So(out.Requested, ShouldEqual, 1)
				So(out.Report, ShouldEqual, res.Report())
				So(out.Violations, ShouldHaveLength, 1)
				So(out.Violations[0].LowerID, ShouldEqual, "a")
				So(out.Violations[0].LowerNew, ShouldEqual, 10.0)
				So(out.Violations[0].UpperName, ShouldEqual, "Second Floor")
				So(out.Violations[0].UpperNew, ShouldEqual, 5.0)
				So(out.Violations[0].Message, ShouldEqual, `Mezzanine (10'-0") would be higher than Second Floor (5'-0")`)
			})
		})

		Convey("When the batch is clean", func() {
			clean, _ := ordering.NewBatch(ordering.Adjustment{LevelID: "a", Current: 0, Delta: 1})
			out := types.NewOutcome(clean, ordering.NewValidator().Check(clean))

			Convey("Then no violations or report are set", func() {
				So(out.OK, ShouldBeTrue)
				So(out.Report, ShouldBeEmpty)
				So(out.Violations, ShouldBeNil)
			})
		})
	})
}

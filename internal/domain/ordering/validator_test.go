package ordering_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/platechanges/internal/domain/ordering"
	. "github.com/smartystreets/goconvey/convey"
)

func mustBatch(adjs ...ordering.Adjustment) ordering.Batch {
	b, err := ordering.NewBatch(adjs...)
	if err != nil {
		panic(err)
	}
	return b
}

func adj(id string, current, delta float64) ordering.Adjustment {
	return ordering.Adjustment{LevelID: id, Name: id, Current: current, Delta: delta}
}

func TestValidator_Validate(t *testing.T) {
	Convey("Given an ordering validator", t, func() {
		v := ordering.NewValidator()

		Convey("When the batch is empty or holds one level", func() {
			Convey("Then it always passes with an empty report", func() {
				ok, report := v.Validate(mustBatch())
				So(ok, ShouldBeTrue)
				So(report, ShouldBeEmpty)

				ok, report = v.Validate(ordering.Batch{})
				So(ok, ShouldBeTrue)
				So(report, ShouldBeEmpty)

				ok, report = v.Validate(mustBatch(adj("A", 0, -100)))
				So(ok, ShouldBeTrue)
				So(report, ShouldBeEmpty)
			})
		})

		Convey("When every level moves by the same amount", func() {
			b := mustBatch(adj("A", 0, 1), adj("B", 5, 1))

			Convey("Then the order is preserved", func() {
				ok, report := v.Validate(b)
				So(ok, ShouldBeTrue)
				So(report, ShouldBeEmpty)
			})
		})

		Convey("When a lower level is raised past a higher one", func() {
			b := mustBatch(adj("A", 0, 10), adj("B", 5, 0))

			Convey("Then the inversion is reported with formatted new elevations", func() {
				ok, report := v.Validate(b)
				So(ok, ShouldBeFalse)
				So(report, ShouldEqual, `A (10'-0") would be higher than B (5'-0"). Do you want to proceed anyway?`)
			})
		})

		Convey("When a higher level is lowered past a level that does not move", func() {
			b := mustBatch(adj("Second Floor", 10, -6), adj("Mezzanine", 5, 0))

			Convey("Then the unchanged level is still reported", func() {
				res := v.Check(b)
				So(res.OK, ShouldBeFalse)
				So(res.Violations, ShouldHaveLength, 1)
				So(res.Violations[0].Lower.LevelID, ShouldEqual, "Mezzanine")
				So(res.Violations[0].Upper.LevelID, ShouldEqual, "Second Floor")
				So(res.Violations[0].String(), ShouldEqual, `Mezzanine (5'-0") would be higher than Second Floor (4'-0")`)
			})
		})

		Convey("When two levels end at the same elevation", func() {
			b := mustBatch(adj("A", 0, 5), adj("B", 5, 0))

			Convey("Then the tie is not a violation", func() {
				ok, report := v.Validate(b)
				So(ok, ShouldBeTrue)
				So(report, ShouldBeEmpty)
			})
		})

		Convey("When two levels start at the same elevation and separate", func() {
			b := mustBatch(adj("A", 5, 2), adj("B", 5, -2))

			Convey("Then neither order is flagged", func() {
				ok, _ := v.Validate(b)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When one level jumps past two others", func() {
			b := mustBatch(adj("A", 0, 12), adj("B", 5, 0), adj("C", 10, 0))

			Convey("Then both inversions are joined into one report", func() {
				ok, report := v.Validate(b)
				So(ok, ShouldBeFalse)
				So(report, ShouldEqual,
					`A (12'-0") would be higher than B (5'-0"), and `+
						`A (12'-0") would be higher than C (10'-0"). Do you want to proceed anyway?`)
			})
		})

		Convey("When two independent pairs invert", func() {
			b := mustBatch(
				adj("L1", 0, 3), adj("L2", 2, 0),
				adj("L3", 20, 0), adj("L4", 22, -2.5),
			)

			Convey("Then both messages appear with the separator", func() {
				res := v.Check(b)
				So(res.OK, ShouldBeFalse)
				So(res.Violations, ShouldHaveLength, 2)
				report := res.Report()
				So(report, ShouldContainSubstring, `L1 (3'-0") would be higher than L2 (2'-0")`)
				So(report, ShouldContainSubstring, `L3 (20'-0") would be higher than L4 (19'-6")`)
				So(report, ShouldContainSubstring, ", and ")
			})
		})
	})
}

func TestValidator_Symmetry(t *testing.T) {
	Convey("Given two-level batches", t, func() {
		v := ordering.NewValidator()
		cases := [][2]ordering.Adjustment{
			{adj("A", 0, 10), adj("B", 5, 0)},
			{adj("A", 0, 5), adj("B", 5, 0)},
			{adj("A", 0, 1), adj("B", 5, 1)},
			{adj("A", 3, 0), adj("B", 3, 1)},
			{adj("A", -4, 0), adj("B", -2, -3)},
		}

		Convey("When the labels and input order are swapped", func() {
			Convey("Then the verdict does not change", func() {
				for _, c := range cases {
					okAB, _ := v.Validate(mustBatch(c[0], c[1]))
					okBA, _ := v.Validate(mustBatch(c[1], c[0]))

					swapped := [2]ordering.Adjustment{c[0], c[1]}
					swapped[0].LevelID, swapped[1].LevelID = c[1].LevelID, c[0].LevelID
					okSwapped, _ := v.Validate(mustBatch(swapped[0], swapped[1]))

					So(okBA, ShouldEqual, okAB)
					So(okSwapped, ShouldEqual, okAB)
				}
			})
		})
	})
}

func TestNewBatch(t *testing.T) {
	Convey("Given raw adjustments", t, func() {
		Convey("When a level id is repeated", func() {
			_, err := ordering.NewBatch(adj("A", 0, 1), adj("A", 0, 2))

			Convey("Then the batch is rejected as invalid input", func() {
				So(errors.Is(err, ordering.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"A"`)
			})
		})

		Convey("When a level id is empty", func() {
			_, err := ordering.NewBatch(adj(" ", 0, 1))

			Convey("Then the batch is rejected", func() {
				So(errors.Is(err, ordering.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When a number is not finite", func() {
			Convey("Then the batch is rejected", func() {
				for _, a := range []ordering.Adjustment{
					adj("A", math.NaN(), 0),
					adj("A", math.Inf(1), 0),
					adj("A", 0, math.NaN()),
					adj("A", 0, math.Inf(-1)),
					adj("A", math.MaxFloat64, math.MaxFloat64),
				} {
					_, err := ordering.NewBatch(a)
					So(errors.Is(err, ordering.ErrInvalidInput), ShouldBeTrue)
				}
			})
		})

		Convey("When the batch is valid", func() {
			b, err := ordering.NewBatch(
				adj("C", 10, 0),
				ordering.Adjustment{LevelID: "A", Current: 0, Delta: 1.5},
				adj("B", 5, -0.5),
			)

			Convey("Then it is sorted bottom to top and counts changed levels", func() {
				So(err, ShouldBeNil)
				So(b.Len(), ShouldEqual, 3)
				So(b.Changed(), ShouldEqual, 2)

				got := b.Adjustments()
				So(got[0].LevelID, ShouldEqual, "A")
				So(got[0].Name, ShouldEqual, "A")
				So(got[1].LevelID, ShouldEqual, "B")
				So(got[2].LevelID, ShouldEqual, "C")

				So(b.Deltas(), ShouldResemble, map[string]float64{"A": 1.5, "B": -0.5})
			})

			Convey("And the returned adjustments are a copy", func() {
				got := b.Adjustments()
				got[0].Delta = 99
				So(b.Adjustments()[0].Delta, ShouldEqual, 1.5)
			})
		})
	})
}

package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/growthlens/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestClassifyGrowth(t *testing.T) {
	convey.Convey("Given the ordered growth thresholds", t, func() {
		cases := []struct {
			growth int
			want   model.GrowthClass
		}{
			{1000, model.GrowthExplosive},
			{401, model.GrowthExplosive},
			{400, model.GrowthVeryHigh},
			{301, model.GrowthVeryHigh},
			{300, model.GrowthHigh},
			{151, model.GrowthHigh},
			{150, model.GrowthModerate},
			{76, model.GrowthModerate},
			{75, model.GrowthNeutral},
			{0, model.GrowthNeutral},
			{-1, model.GrowthSlightDecline},
			{-75, model.GrowthSlightDecline},
			{-76, model.GrowthDecline},
			{-150, model.GrowthDecline},
			{-151, model.GrowthSteepDecline},
			{-900, model.GrowthSteepDecline},
		}

		convey.Convey("When classifying boundary values", func() {
			convey.Convey("Then the first matching threshold wins", func() {
				for _, c := range cases {
					convey.So(model.ClassifyGrowth(c.growth), convey.ShouldEqual, c.want)
				}
			})
		})

		convey.Convey("When the growth is exactly 150", func() {
			convey.Convey("Then it is moderate, not high", func() {
				class := model.ClassifyGrowth(150)
				convey.So(class, convey.ShouldEqual, model.GrowthModerate)
				convey.So(class.Label(), convey.ShouldEqual, ">75")
				convey.So(class.String(), convey.ShouldEqual, "MODERATE")
			})
		})
	})
}

func TestGrowthClassText(t *testing.T) {
	convey.Convey("Given every growth class", t, func() {
		classes := []model.GrowthClass{
			model.GrowthExplosive, model.GrowthVeryHigh, model.GrowthHigh, model.GrowthModerate,
			model.GrowthNeutral, model.GrowthSlightDecline, model.GrowthDecline, model.GrowthSteepDecline,
		}

		convey.Convey("Then each label parses back to the same class", func() {
			for _, c := range classes {
				parsed, err := model.ParseGrowthClass(c.Label())
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed, convey.ShouldEqual, c)
			}
		})

		convey.Convey("Then the class is encoded as its label inside JSON", func() {
			raw, err := json.Marshal(struct {
				C model.GrowthClass `json:"c"`
			}{C: model.GrowthSteepDecline})
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldEqual, `{"c":">-300"}`)
		})
	})

	convey.Convey("Given an unknown label", t, func() {
		_, err := model.ParseGrowthClass(">9000")

		convey.Convey("Then parsing fails with the sentinel error", func() {
			convey.So(errors.Is(err, model.ErrUnknownGrowthClass), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the zero class", t, func() {
		var c model.GrowthClass

		convey.Convey("Then it is not valid and cannot be marshaled", func() {
			convey.So(c.Valid(), convey.ShouldBeFalse)
			_, err := c.MarshalText()
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

package libamp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp/checkpoint"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunCheckpointed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a k=3 hypercube walk and an in-memory checkpoint store", t, func() {
		p := hypercubePoly(t, 3)
		s := bitStringOf(24, 0x3c_0f_a5)

		opts := goamp.DefaultWalkOpts
		opts.Parts = 4
		w := newWalker(t, p, s, opts)

		expect, err := w.Amplitude(ctx)
		So(err, ShouldBeNil)

		store, err := checkpoint.Open(checkpoint.Opts{})
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("A checkpointed walk matches an uninterrupted one", func() {
			rpt, err := w.WalkCheckpointed(ctx, store, 10)
			So(err, ShouldBeNil)
			So(rpt.Amplitude, ShouldEqual, expect)

			recs, err := store.List(w.JobKey(4))
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 4)
			for _, rec := range recs {
				So(rec.Done(), ShouldBeTrue)
			}

			Convey("and a second pass resumes from the finished records", func() {
				before := store.NumSaves()
				rpt2, err := w.WalkCheckpointed(ctx, store, 10)
				So(err, ShouldBeNil)
				So(rpt2.Amplitude, ShouldEqual, expect)
				So(store.NumSaves(), ShouldEqual, before)
			})
		})

		Convey("A canceled partition resumes where its last record left off", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := w.RunCheckpointed(canceled, store, 4, 2, 16)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			// walk part of the range by hand and save it
			st, err := w.SeedAt(128, 192)
			So(err, ShouldBeNil)
			for i := 0; i < 21; i++ {
				So(w.Step(st), ShouldBeNil)
			}
			So(store.Save(w.ExportState(st, w.JobKey(4), 2, 128)), ShouldBeNil)

			resumed, err := w.RunCheckpointed(ctx, store, 4, 2, 16)
			So(err, ShouldBeNil)
			So(resumed.Pos, ShouldEqual, uint64(192))

			fresh, err := w.SeedAt(128, 192)
			So(err, ShouldBeNil)
			So(w.Run(ctx, fresh), ShouldBeNil)
			So(resumed.Sum, ShouldEqual, fresh.Sum)
			So(resumed.Evals, ShouldEqual, fresh.Evals)
		})

		Convey("A walk with a different quick reject mode starts its own records", func() {
			_, err := w.WalkCheckpointed(ctx, store, 0)
			So(err, ShouldBeNil)

			quick := opts
			quick.QuickReject = goamp.QuickRejectOn
			wq := newWalker(t, p, s, quick)
			So(wq.JobKey(4), ShouldNotEqual, w.JobKey(4))

			before := store.NumSaves()
			_, err = wq.WalkCheckpointed(ctx, store, 0)
			So(err, ShouldBeNil)
			So(store.NumSaves(), ShouldEqual, before+4)

			recs, err := store.List(wq.JobKey(4))
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 4)
			recs, err = store.List(w.JobKey(4))
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 4)
		})

		Convey("A record from a different range is rejected", func() {
			st, _ := w.SeedAt(0, 64)
			rec := w.ExportState(st, w.JobKey(4), 1, 0)
			So(store.Save(rec), ShouldBeNil)

			_, err := w.RunCheckpointed(ctx, store, 4, 1, 16)
			So(errors.Is(err, goamp.ErrCheckpointMismatch), ShouldBeTrue)
		})

		Convey("A record whose red assignment is off schedule is rejected", func() {
			st, _ := w.SeedAt(64, 128)
			rec := w.ExportState(st, w.JobKey(4), 1, 64)
			rec.XRed ^= 1
			_, err := w.ImportState(rec)
			So(errors.Is(err, goamp.ErrCheckpointMismatch), ShouldBeTrue)
		})
	})
}

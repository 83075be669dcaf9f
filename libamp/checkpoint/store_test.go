package checkpoint_test

import (
	"errors"
	"testing"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp/checkpoint"
	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given an in-memory checkpoint store", t, func() {
		store, err := checkpoint.Open(checkpoint.Opts{})
		So(err, ShouldBeNil)
		defer store.Close()

		job := checkpoint.JobKey([]byte("hypercube"), []byte("k=2"))

		Convey("Load of a missing record reports ErrNoCheckpoint", func() {
			_, err := store.Load(job, 0)
			So(errors.Is(err, goamp.ErrNoCheckpoint), ShouldBeTrue)
		})

		Convey("A saved record loads back field for field", func() {
			rec := &checkpoint.WalkRecord{
				JobKey:   job,
				Part:     3,
				NumNodes: 4,
				Start:    8,
				Pos:      11,
				End:      12,
				XRed:     0b1110,
				Gamma:    []uint64{0b0001, 0, 0b1010, 0b0110},
				DeltaB:   0b0101,
				DeltaG:   0b1000,
				Sum:      -0.375,
				Evals:    3,
				Hits:     2,
			}
			So(store.Save(rec), ShouldBeNil)

			got, err := store.Load(job, 3)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, rec)
			So(got.Done(), ShouldBeFalse)
			So(store.NumSaves(), ShouldEqual, uint64(1))

			Convey("and a later save replaces it", func() {
				rec.Pos = rec.End
				rec.Sum = 0.25
				So(store.Save(rec), ShouldBeNil)

				got, err := store.Load(job, 3)
				So(err, ShouldBeNil)
				So(got.Done(), ShouldBeTrue)
				So(got.Sum, ShouldEqual, 0.25)
			})
		})

		Convey("List returns a job's records in partition order and Drop removes them", func() {
			other := checkpoint.JobKey([]byte("hypercube"), []byte("k=3"))
			So(other, ShouldNotEqual, job)

			for _, part := range []uint32{2, 0, 1} {
				So(store.Save(&checkpoint.WalkRecord{JobKey: job, Part: part, End: 4}), ShouldBeNil)
			}
			So(store.Save(&checkpoint.WalkRecord{JobKey: other, Part: 0, End: 4}), ShouldBeNil)

			recs, err := store.List(job)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 3)
			for i, rec := range recs {
				So(rec.Part, ShouldEqual, uint32(i))
				So(rec.JobKey, ShouldEqual, job)
			}

			So(store.Drop(job), ShouldBeNil)
			recs, err = store.List(job)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)

			recs, err = store.List(other)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 1)
		})
	})

	Convey("A read-only store needs a path", t, func() {
		_, err := checkpoint.Open(checkpoint.Opts{ReadOnly: true})
		So(errors.Is(err, goamp.ErrReadOnly), ShouldBeTrue)
	})
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := checkpoint.Open(checkpoint.Opts{DbPathName: dir})
	if err != nil {
		t.Fatal(err)
	}
	rec := &checkpoint.WalkRecord{JobKey: 7, Part: 1, NumNodes: 3, Pos: 5, End: 8, Gamma: []uint64{1, 2, 4}, Sum: 0.5}
	if err = store.Save(rec); err != nil {
		t.Fatal(err)
	}
	if err = store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = checkpoint.Open(checkpoint.Opts{DbPathName: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	got, err := store.Load(7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pos != rec.Pos || got.Sum != rec.Sum || len(got.Gamma) != 3 || got.Gamma[2] != 4 {
		t.Fatalf("reopened record differs:\n%s", spew.Sdump(got))
	}
	if store.NumSaves() != 1 {
		t.Fatalf("NumSaves = %d after reopen", store.NumSaves())
	}
}

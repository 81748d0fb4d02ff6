package orchestrator_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ambrydata/mpr/orchestrator"
	"github.com/ambrydata/mpr/rowstore"
	"github.com/ambrydata/mpr/source"
)

func numericRows(n int) [][]interface{} {
	rows := make([][]interface{}, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []interface{}{i, "item"})
	}
	return rows
}

var _ = Describe("Load", func() {
	var path string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "mpr-orchestrator-")
		Expect(err).NotTo(HaveOccurred())
		path = filepath.Join(dir, "t.mpr")
	})

	It("runs the full pipeline and finalizes the file", func() {
		src := source.NewSliceSource(numericRows(50), []string{"Id", "Label"})
		opts := orchestrator.DefaultOptions()

		Expect(orchestrator.Load(path, src, opts)).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		info := r.Info()
		Expect(info.NRows).To(Equal(uint32(50)))
		Expect(info.Finalized).To(BeTrue())

		meta := r.Meta()
		Expect(meta.Process.RowIntuited || len(meta.Warnings) > 0).To(BeTrue())
		Expect(meta.Process.TypeIntuited).To(BeTrue())
		Expect(meta.Process.StatsRun).To(BeTrue())
	})

	It("deletes the partial file when the source fails mid-load", func() {
		src := &failingSource{failAfter: 3}
		err := orchestrator.Load(path, src, orchestrator.DefaultOptions())
		Expect(err).To(HaveOccurred())

		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("accepts a progress callback that stays silent below the interval", func() {
		src := source.NewSliceSource(numericRows(5), nil)
		var seen []int
		opts := orchestrator.Options{Progress: func(n int) { seen = append(seen, n) }}
		Expect(orchestrator.Load(path, src, opts)).To(Succeed())
		// With only 5 rows and a 100k progress interval, no callback fires;
		// this simply asserts Load tolerates a non-nil callback.
		Expect(seen).To(BeEmpty())
	})
})

type failingSource struct {
	n         int
	failAfter int
}

func (f *failingSource) Next() ([]interface{}, bool, error) {
	if f.n >= f.failAfter {
		return nil, false, errors.New("boom")
	}
	f.n++
	return []interface{}{f.n}, true, nil
}

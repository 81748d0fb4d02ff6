package rowstore_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowstore"
)

func tempPath(name string) string {
	dir, err := os.MkdirTemp("", "mpr-rowstore-")
	Expect(err).NotTo(HaveOccurred())
	return filepath.Join(dir, name)
}

var _ = Describe("Writer and Reader", func() {
	var path string

	BeforeEach(func() {
		path = tempPath("t.mpr")
	})

	It("round-trips a header row plus data rows", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())

		w.SetHeaders([]string{"Name", "Count"})
		Expect(w.Append(object.Row{object.String("Name"), object.String("Count")})).To(Succeed())
		Expect(w.Append(object.Row{object.String("apples"), object.Int64(3)})).To(Succeed())
		Expect(w.Append(object.Row{object.String("pears"), object.Int64(7)})).To(Succeed())

		w.SetRowSpec([]int{0}, nil, 1, 2, "SS", nil)
		w.Finalize()
		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		info := r.Info()
		Expect(info.NRows).To(Equal(uint32(3)))
		Expect(info.DataStartRow).To(Equal(uint32(1)))
		Expect(info.DataEndRow).To(Equal(uint32(2)))
		Expect(info.Finalized).To(BeTrue())
		Expect(info.Headers).To(Equal([]string{"name", "count"}))

		it, err := r.Iter(rowstore.ModeData)
		Expect(err).NotTo(HaveOccurred())
		defer it.Close()

		var got []object.Row
		for {
			res, ok, err := it.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			got = append(got, res.Row)
		}
		Expect(got).To(HaveLen(2))
		Expect(got[0]).To(Equal(object.Row{object.String("apples"), object.Int64(3)}))
		Expect(got[1]).To(Equal(object.Row{object.String("pears"), object.Int64(7)}))
	})

	It("yields every row under ModeRaw including rows outside the data range", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Append(object.Row{object.String("Name")})).To(Succeed())
		Expect(w.Append(object.Row{object.String("a")})).To(Succeed())
		w.SetRowSpec([]int{0}, nil, 1, 1, "S", nil)
		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		raw, err := r.Iter(rowstore.ModeRaw)
		Expect(err).NotTo(HaveOccurred())
		defer raw.Close()
		n := 0
		for {
			_, ok, err := raw.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			n++
		}
		Expect(n).To(Equal(2))

		data, err := r.Iter(rowstore.ModeData)
		Expect(err).NotTo(HaveOccurred())
		defer data.Close()
		n = 0
		for {
			_, ok, err := data.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			n++
		}
		Expect(n).To(Equal(1))
	})

	It("labels rows under ModeClassified", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Append(object.Row{object.String("# a comment")})).To(Succeed())
		Expect(w.Append(object.Row{object.String("Name")})).To(Succeed())
		Expect(w.Append(object.Row{object.String("a")})).To(Succeed())
		Expect(w.Append(object.Row{object.String("b")})).To(Succeed())
		w.SetRowSpec([]int{1}, []int{0}, 2, 3, "S", nil)
		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		it, err := r.Iter(rowstore.ModeClassified)
		Expect(err).NotTo(HaveOccurred())
		defer it.Close()

		var labels []rowstore.RowLabel
		for {
			res, ok, err := it.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			labels = append(labels, res.Label)
		}
		Expect(labels).To(Equal([]rowstore.RowLabel{
			rowstore.LabelComment, rowstore.LabelHeader, rowstore.LabelData, rowstore.LabelData,
		}))
	})

	It("filters and projects through Select", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		w.SetHeaders([]string{"Name", "Count"})
		Expect(w.Append(object.Row{object.String("apples"), object.Int64(3)})).To(Succeed())
		Expect(w.Append(object.Row{object.String("pears"), object.Int64(7)})).To(Succeed())
		Expect(w.Append(object.Row{object.String("plums"), object.Int64(1)})).To(Succeed())
		w.SetRowSpec(nil, nil, 0, 2, "SN", nil)
		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		it, err := r.Iter(rowstore.ModeData)
		Expect(err).NotTo(HaveOccurred())
		defer it.Close()

		sel := it.Select(func(res rowstore.RowResult) bool {
			count, ok := res.Row[1].(object.Int64)
			return ok && int64(count) > 2
		}, []string{"name"})

		var names []object.Value
		for {
			res, ok, err := sel.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			Expect(res.Row).To(HaveLen(1))
			names = append(names, res.Row[0])
		}
		Expect(names).To(Equal([]object.Value{object.String("apples"), object.String("pears")}))
	})

	It("exposes rows through the NextProxy flyweight", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		w.SetHeaders([]string{"Name", "Count"})
		Expect(w.Append(object.Row{object.String("apples"), object.Int64(3)})).To(Succeed())
		w.SetRowSpec(nil, nil, 0, 0, "SN", nil)
		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		it, err := r.Iter(rowstore.ModeData)
		Expect(err).NotTo(HaveOccurred())
		defer it.Close()

		proxy, ok, err := it.NextProxy()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(proxy.Get("name")).To(Equal(object.String("apples")))
		Expect(proxy.At(1)).To(Equal(object.Int64(3)))

		owned := proxy.Materialize()
		Expect(owned).To(Equal(object.Row{object.String("apples"), object.Int64(3)}))

		_, ok, err = it.NextProxy()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("merges type and stats profiles into the persisted schema", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		w.SetHeaders([]string{"count"})
		Expect(w.Append(object.Row{object.Int64(3)})).To(Succeed())
		w.SetRowSpec(nil, nil, 0, 0, "N", nil)

		profile := rowstore.NewSchema(1)
		profile.Columns[0].ResolvedType = rowstore.TypeInt
		profile.Columns[0].Ints = 1
		profile.Columns[0].LOM = rowstore.LOMInterval
		w.SetTypes(profile)

		stats := rowstore.NewSchema(1)
		stats.Columns[0].Mean = 3
		stats.Columns[0].NUniques = 1
		w.SetStats(stats)

		Expect(w.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		c, ok := r.Schema().Column(1)
		Expect(ok).To(BeTrue())
		Expect(c.ResolvedType).To(Equal(rowstore.TypeInt))
		Expect(c.Mean).To(Equal(3.0))
		meta := r.Meta()
		Expect(meta.Process.TypeIntuited).To(BeTrue())
		Expect(meta.Process.StatsRun).To(BeTrue())
	})

	It("forbids appending rows to a writer re-opened for meta only", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Append(object.Row{object.Int64(1)})).To(Succeed())
		w.SetRowSpec(nil, nil, 0, 0, "N", nil)
		Expect(w.Close()).To(Succeed())

		meta, err := rowstore.OpenForMeta(path)
		Expect(err).NotTo(HaveOccurred())

		meta.AddWarning("late comment")
		err = meta.Append(object.Row{object.Int64(2)})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, errs.AlreadyFinalized)).To(BeTrue())

		Expect(meta.Close()).To(Succeed())

		r, err := rowstore.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()
		Expect(r.Info().NRows).To(Equal(uint32(1)))
		Expect(r.Meta().Warnings).To(ContainElement("late comment"))
	})

	It("removes the partial file on Abort", func() {
		w, err := rowstore.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Append(object.Row{object.Int64(1)})).To(Succeed())
		Expect(w.Abort()).To(Succeed())

		_, err = os.Stat(path)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})

package container_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ambrydata/mpr/container"
	"github.com/ambrydata/mpr/errs"
)

var _ = Describe("Meta block", func() {
	It("round-trips arbitrary meta values", func() {
		f := &memFile{}
		m := container.NewMeta()
		m.About["title"] = "test dataset"
		m.Comments = []string{"# leading comment"}
		m.Process.Finalized = true
		m.Schema = append(m.Schema, columnRow(1, "id"), columnRow(2, "name"))

		end, err := container.WriteMeta(f, 0, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(end).To(BeNumerically(">", 0))

		got, err := container.ReadMeta(f, 0, f.Size())
		Expect(err).NotTo(HaveOccurred())
		Expect(got.About["title"]).To(Equal("test dataset"))
		Expect(got.Comments).To(Equal(m.Comments))
		Expect(got.Process.Finalized).To(BeTrue())
		Expect(got.Schema).To(HaveLen(3))
	})

	It("yields an empty meta for a brand new, unwritten region", func() {
		f := &memFile{}
		got, err := container.ReadMeta(f, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Schema).To(HaveLen(1))
	})

	It("rejects a schema whose template row was tampered with", func() {
		f := &memFile{}
		m := container.NewMeta()
		m.Schema[0][0] = "not_pos"
		_, err := container.WriteMeta(f, 0, m)
		Expect(err).To(MatchError(errs.CorruptFile))
	})

	It("rejects a non-gzip meta region", func() {
		f := &memFile{}
		_, werr := f.WriteAt([]byte("not gzip at all, just junk bytes"), 0)
		Expect(werr).NotTo(HaveOccurred())
		_, err := container.ReadMeta(f, 0, f.Size())
		Expect(err).To(MatchError(errs.CorruptFile))
	})

	It("truncates away a previous, longer meta block", func() {
		f := &memFile{}
		big := container.NewMeta()
		for i := 0; i < 50; i++ {
			big.Comments = append(big.Comments, "padding comment to grow the block")
		}
		end1, err := container.WriteMeta(f, 0, big)
		Expect(err).NotTo(HaveOccurred())

		small := container.NewMeta()
		end2, err := container.WriteMeta(f, 0, small)
		Expect(err).NotTo(HaveOccurred())
		Expect(end2).To(BeNumerically("<", end1))
		Expect(f.Size()).To(Equal(end2))
	})
})

func columnRow(pos int, name string) []interface{} {
	tmpl := container.SchemaTemplate()
	row := make([]interface{}, len(tmpl))
	row[0] = pos
	row[1] = name
	return row
}

package container_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ambrydata/mpr/container"
	"github.com/ambrydata/mpr/errs"
)

var _ = Describe("FileHeader", func() {
	It("round-trips through write then read", func() {
		f := &memFile{}
		h := container.FileHeader{
			Version:      container.Version,
			NRows:        2,
			NCols:        3,
			MetaStart:    128,
			DataStartRow: 0,
			DataEndRow:   1,
		}
		Expect(container.WriteHeader(f, h)).To(Succeed())

		got, err := container.ReadHeader(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(h))
	})

	It("rejects a bad magic", func() {
		f := &memFile{buf: make([]byte, container.HeaderSize)}
		copy(f.buf, "NOTMAGIC")
		_, err := container.ReadHeader(f)
		Expect(err).To(MatchError(errs.CorruptFile))
	})

	It("rejects an unsupported version", func() {
		f := &memFile{}
		h := container.NewFileHeader()
		h.Version = 99
		h.MetaStart = container.HeaderSize
		Expect(container.WriteHeader(f, h)).To(Succeed())
		_, err := container.ReadHeader(f)
		Expect(err).To(MatchError(errs.CorruptFile))
	})

	It("rejects an inconsistent data range", func() {
		f := &memFile{}
		h := container.FileHeader{
			Version:      container.Version,
			NRows:        5,
			MetaStart:    container.HeaderSize,
			DataStartRow: 3,
			DataEndRow:   1, // end before start
		}
		Expect(container.WriteHeader(f, h)).To(Succeed())
		_, err := container.ReadHeader(f)
		Expect(err).To(MatchError(errs.CorruptFile))
	})

	It("truncated header is corrupt, not a panic", func() {
		f := &memFile{buf: make([]byte, 4)}
		_, err := container.ReadHeader(f)
		Expect(err).To(MatchError(errs.CorruptFile))
	})
})

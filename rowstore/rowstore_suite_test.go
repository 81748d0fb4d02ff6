package rowstore_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestRowstore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "rowstore suite")
}

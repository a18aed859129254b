package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/internal/testsupport"
)

func TestFullScanPrintNativeRendersWhenSupportIsARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	support := renderingStore{Store: store, rendered: "s3://widgets-archive/widgets/"}

	node := exec.NewFullScan[testsupport.Widget](support)
	assert.Equal(t, "s3://widgets-archive/widgets/", node.PrintNative())
}

func TestFullScanPrintNativeEmptyWhenSupportIsNotARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	node := exec.NewFullScan[testsupport.Widget](store)
	assert.Equal(t, "", node.PrintNative())
}

func TestFullScanIndexedPrintNativeRendersWhenSupportIsARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	support := renderingStore{Store: store, rendered: "SELECT * FROM widgets ORDER BY age ASC, name ASC"}

	node := exec.NewFullScanIndexed[testsupport.Widget](support.AllIndexes()[2], support)
	assert.Equal(t, "SELECT * FROM widgets ORDER BY age ASC, name ASC", node.PrintNative())
}

func TestFullScanIndexedPrintNativeEmptyWhenSupportIsNotARenderer(t *testing.T) {
	store := testsupport.NewStore(testsupport.NewTypeInfo("Widget"), widgets())
	node := exec.NewFullScanIndexed[testsupport.Widget](store.AllIndexes()[2], store)
	assert.Equal(t, "", node.PrintNative())
}

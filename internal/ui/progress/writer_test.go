package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
	assert.Equal(t, "2.0 GB", FormatBytes(2*1024*1024*1024))
}

func TestPrinterWritesOneLinePerStep(t *testing.T) {
	t.Setenv("ESOCTL_NERD_FONTS", "")

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Complete("Foo Bar 1.3")
	p.Error("Baz: checksum mismatch")
	p.Skipped("Qux")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Foo Bar 1.3")
	assert.Contains(t, lines[1], "checksum mismatch")
	assert.Contains(t, lines[2], ASCIIIcons.Skip)
}

func TestThrottledProgressRestartsForEachItem(t *testing.T) {
	var sent []SubProgressMsg
	report := throttledProgress(func(msg SubProgressMsg) { sent = append(sent, msg) })

	const total = 1000
	for item := 0; item < 2; item++ {
		for chunk := int64(1); chunk <= 10; chunk++ {
			report(chunk*total/10, total)
		}
	}

	assert.Len(t, sent, 20, "every tenth of both items is reported")
	assert.InDelta(t, 10, sent[10].Percent, 0.001, "second item starts from its own first chunk")
	assert.InDelta(t, 100, sent[19].Percent, 0.001)
}

func TestThrottledProgressSkipsSubPercentChunks(t *testing.T) {
	var sent []SubProgressMsg
	report := throttledProgress(func(msg SubProgressMsg) { sent = append(sent, msg) })

	for n := int64(1); n <= 100; n++ {
		report(n, 10000)
	}
	report(10000, 10000)

	assert.Len(t, sent, 2, "only the first chunk and completion are reported")
	assert.Equal(t, "9.8 KB / 9.8 KB", sent[1].Detail)
}

func TestPrinterDetailUsesArrowIcon(t *testing.T) {
	t.Setenv("ESOCTL_NERD_FONTS", "")

	var buf bytes.Buffer
	NewPrinter(&buf).Detail("/tmp/esoctl/filelist.json")

	assert.Contains(t, buf.String(), ASCIIIcons.Arrow)
	assert.Contains(t, buf.String(), "filelist.json")
}

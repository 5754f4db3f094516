package knowledge

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"
)

// Sample row written into a freshly created knowledge workbook
const (
	SampleQuestion = "Παράδειγμα"
	SampleAnswer   = "Απάντηση"
)

// EnsureSample creates a workbook with a header and one example row at path
// when no file exists there. It reports whether a file was created. An
// existing file is never touched.
func EnsureSample(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, goerr.Wrap(err, "failed to stat knowledge file", goerr.V("path", path))
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Question",
		"B1": "Answer",
		"A2": SampleQuestion,
		"B2": SampleAnswer,
	}
	for ref, v := range cells {
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			return false, goerr.Wrap(err, "failed to write sample cell", goerr.V("cell", ref))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return false, goerr.Wrap(err, "failed to render sample workbook")
	}
	if err := atomic.WriteFile(path, buf); err != nil {
		return false, goerr.Wrap(err, "failed to write sample workbook", goerr.V("path", path))
	}
	return true, nil
}

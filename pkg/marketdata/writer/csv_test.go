package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-history/internal/types"
)

type CSVWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *CSVWriterTestSuite) table(rows int) types.PriceTable {
	table := types.PriceTable{Symbol: "AAPL"}
	for i := 0; i < rows; i++ {
		table.Rows = append(table.Rows, types.PriceRow{
			Date:     time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC),
			Open:     decimal.RequireFromString("187.15"),
			High:     decimal.RequireFromString("188.44"),
			Low:      decimal.RequireFromString("183.89"),
			Close:    decimal.RequireFromString("185.64"),
			AdjClose: decimal.RequireFromString("184.73"),
			Volume:   decimal.NewFromInt(82488700),
		})
	}

	return table
}

func (suite *CSVWriterTestSuite) readLines(path string) []string {
	content, err := os.ReadFile(path)
	suite.Require().NoError(err)

	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}

func (suite *CSVWriterTestSuite) stagingFiles() []string {
	matches, err := filepath.Glob(filepath.Join(suite.tempDir, ".*.tmp-*"))
	suite.Require().NoError(err)

	return matches
}

func (suite *CSVWriterTestSuite) TestWriteTableLayout() {
	outputPath := filepath.Join(suite.tempDir, OutputFileName("AAPL", FormatCSV))

	path, err := WriteTable(NewCSVWriter(outputPath, "AAPL"), suite.table(2))
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	lines := suite.readLines(path)
	suite.Equal([]string{
		"AAPL",
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-02,187.15,188.44,183.89,185.64,184.73,82488700",
		"2024-01-03,187.15,188.44,183.89,185.64,184.73,82488700",
	}, lines)

	info, err := os.Stat(path)
	suite.Require().NoError(err)
	suite.Equal(os.FileMode(0o644), info.Mode().Perm())
	suite.Empty(suite.stagingFiles())
}

func (suite *CSVWriterTestSuite) TestWriteTableOverwrites() {
	outputPath := filepath.Join(suite.tempDir, "AAPL_5y.csv")
	suite.Require().NoError(os.WriteFile(outputPath, []byte("stale\ncontent\nthat\nis\nlonger\nthan\nthe\nnew\nfile\n"), 0o644))

	_, err := WriteTable(NewCSVWriter(outputPath, "AAPL"), suite.table(1))
	suite.Require().NoError(err)

	suite.Len(suite.readLines(outputPath), 3)
}

func (suite *CSVWriterTestSuite) TestEmptyTableWritesHeaderOnly() {
	outputPath := filepath.Join(suite.tempDir, "AAPL_5y.csv")

	_, err := WriteTable(NewCSVWriter(outputPath, "AAPL"), types.PriceTable{Symbol: "AAPL"})
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "Date,Open,High,Low,Close,Adj Close,Volume"}, suite.readLines(outputPath))
}

func (suite *CSVWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewCSVWriter(filepath.Join(suite.tempDir, "AAPL_5y.csv"), "AAPL")

	err := writer.Write(types.PriceRow{})
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
	suite.NoError(writer.Close())
}

func (suite *CSVWriterTestSuite) TestCloseDiscardsUnfinishedOutput() {
	outputPath := filepath.Join(suite.tempDir, "AAPL_5y.csv")
	writer := NewCSVWriter(outputPath, "AAPL")

	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.table(1).Rows[0]))
	suite.Require().Len(suite.stagingFiles(), 1)

	suite.NoError(writer.Close())

	suite.Empty(suite.stagingFiles())
	_, err := os.Stat(outputPath)
	suite.True(os.IsNotExist(err))
}

func (suite *CSVWriterTestSuite) TestInitializeMissingDirectory() {
	outputPath := filepath.Join(suite.tempDir, "missing", "AAPL_5y.csv")

	_, err := WriteTable(NewCSVWriter(outputPath, "AAPL"), suite.table(1))
	suite.Error(err)
	suite.Contains(err.Error(), "failed to initialize writer")
}

func (suite *CSVWriterTestSuite) TestFinalizeRenameFailureKeepsExistingFile() {
	// a directory at the output path makes the rename fail
	outputPath := filepath.Join(suite.tempDir, "AAPL_5y.csv")
	suite.Require().NoError(os.Mkdir(outputPath, 0o755))
	suite.Require().NoError(os.WriteFile(filepath.Join(outputPath, "keep"), []byte("x"), 0o644))

	_, err := WriteTable(NewCSVWriter(outputPath, "AAPL"), suite.table(1))
	suite.Error(err)
	suite.Empty(suite.stagingFiles())

	info, statErr := os.Stat(outputPath)
	suite.Require().NoError(statErr)
	suite.True(info.IsDir())
}

package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCSV_Basic(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n"
	rows, err := ReadAllCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"4", "5", "6"}}, rows)
}

func TestStreamCSV_HeaderSkipped(t *testing.T) {
	input := "FILER_ID\tPARTY\n100\tDEMOCRATIC\n200\tREPUBLICAN\n"
	headerCh := make(chan []string, 1)

	rows, err := ReadAllCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: '\t',
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FILER_ID", "PARTY"}, <-headerCh)
	assert.Equal(t, [][]string{{"100", "DEMOCRATIC"}, {"200", "REPUBLICAN"}}, rows)
}

func TestStreamCSV_RaggedRows(t *testing.T) {
	input := "a,b\n1\n2,3,4\n"
	rows, err := ReadAllCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestStreamCSV_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAllCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	require.Error(t, err)
}

func TestStreamCSV_Empty(t *testing.T) {
	rows, err := ReadAllCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairdash/internal/fairness/fixtures"
	"fairdash/internal/fairness/models"
)

const sample = `state,year,demographic_category,demographic_group,fairness_measure,value,coalesced_n
CA,2019,race,Black,Statistical Parity,4.25,1200
CA,2020,race,Black,Statistical Parity,,900
TX,2020,sex,Female,Predictive Parity,-0.5,1500.0
`

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "CA", rows[0].State)
	assert.Equal(t, 2019, rows[0].Year)
	require.NotNil(t, rows[0].Value)
	assert.InDelta(t, 4.25, *rows[0].Value, 1e-9)
	assert.Nil(t, rows[1].Value, "blank value stays absent")
	assert.Equal(t, 1500, rows[2].CoalescedN)
}

func TestReadCSVColumnOrderIndependent(t *testing.T) {
	in := "value,coalesced_n,fairness_measure,demographic_group,demographic_category,year,state\n1.5,10,Statistical Parity,Black,race,2018,AL\n"
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AL", rows[0].State)
	assert.Equal(t, 10, rows[0].CoalescedN)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")

	_, err = ReadCSV(strings.NewReader("state,year\nCA,2019\n"))
	assert.ErrorContains(t, err, "missing column")

	bad := strings.Replace(sample, "2019", "twenty", 1)
	_, err = ReadCSV(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
}

func TestWriteCSVRoundTripsFixture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures.Rows()))

	rows, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Rows(), rows)
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fairness.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	rows, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	body, ok := f.objects[strings.TrimPrefix(req.URL.Path, "/")]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"text/csv"}},
	}, nil
}

func newFakeClient(t *testing.T, objects map[string]string) *s3.Client {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: &fakeS3{objects: objects}}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
}

func TestLoadFromS3(t *testing.T) {
	client := newFakeClient(t, map[string]string{"datasets/exports/fairness.csv": sample})

	rows, err := Load(context.Background(), "s3://datasets/exports/fairness.csv", WithS3Client(client))

	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLoadFromS3MissingObject(t *testing.T) {
	client := newFakeClient(t, map[string]string{})

	_, err := Load(context.Background(), "s3://datasets/nope.csv", WithS3Client(client))

	assert.ErrorContains(t, err, "get dataset object")
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://bucket/a/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "a/b.csv", key)

	_, _, err = parseS3URL("s3://bucket")
	assert.Error(t, err)
}

// exportRecord mirrors a pandas export: float counts, nullable values and
// 64-bit years.
type exportRecord struct {
	State               string   `parquet:"state"`
	Year                int64    `parquet:"year"`
	DemographicCategory string   `parquet:"demographic_category"`
	DemographicGroup    string   `parquet:"demographic_group"`
	FairnessMeasure     string   `parquet:"fairness_measure"`
	Value               *float64 `parquet:"value,optional"`
	CoalescedN          float64  `parquet:"coalesced_n"`
}

func writeParquet(t *testing.T, rows []models.Row) []byte {
	t.Helper()
	records := make([]exportRecord, len(rows))
	for i, r := range rows {
		records[i] = exportRecord{
			State:               r.State,
			Year:                int64(r.Year),
			DemographicCategory: r.DemographicCategory,
			DemographicGroup:    r.DemographicGroup,
			FairnessMeasure:     r.FairnessMeasure,
			Value:               r.Value,
			CoalescedN:          float64(r.CoalescedN),
		}
	}
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[exportRecord](&buf)
	_, err := w.Write(records)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadParquetFixture(t *testing.T) {
	data := writeParquet(t, fixtures.Rows())

	rows, err := ReadParquet(bytes.NewReader(data), int64(len(data)))

	require.NoError(t, err)
	assert.Equal(t, fixtures.Rows(), rows, "rows keep file order and suppressed values stay nil")
}

func TestReadParquetMissingColumn(t *testing.T) {
	type partial struct {
		State string `parquet:"state"`
		Year  int32  `parquet:"year"`
	}
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[partial](&buf)
	_, err := w.Write([]partial{{State: "CA", Year: 2020}})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))

	assert.ErrorContains(t, err, "missing column")
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	parquetPath := filepath.Join(dir, "fairness.parquet")
	require.NoError(t, os.WriteFile(parquetPath, writeParquet(t, fixtures.Rows()), 0o600))
	csvPath := filepath.Join(dir, "fairness.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte(sample), 0o600))

	rows, err := Load(context.Background(), parquetPath)
	require.NoError(t, err)
	assert.Len(t, rows, len(fixtures.Rows()))

	rows, err = Load(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = Load(context.Background(), csvPath+".parquet")
	assert.Error(t, err)
}

func TestLoadParquetFromS3(t *testing.T) {
	client := newFakeClient(t, map[string]string{"datasets/fairness.parquet": string(writeParquet(t, fixtures.Rows()))})

	rows, err := Load(context.Background(), "s3://datasets/fairness.parquet", WithS3Client(client))

	require.NoError(t, err)
	assert.Equal(t, fixtures.Rows(), rows)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatParquet, FormatOf("data/fairness.parquet"))
	assert.Equal(t, FormatParquet, FormatOf("s3://bucket/export"))
	assert.Equal(t, FormatCSV, FormatOf("s3://bucket/a/b.csv"))
}

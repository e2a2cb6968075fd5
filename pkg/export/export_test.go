package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/marmos91/idrecon/pkg/recon/model"
)

func sampleRows() []model.ConsolidatedRow {
	return []model.ConsolidatedRow{
		{
			RowSource: "Izhevsk", Domain: "izh.example.com", Login: "ivanov",
			AccountEnabled: "Yes", EmployeeID: "E1", MfaEnabled: "Yes",
			NameDirectory: "Иванов Иван", HasMfa: true, HasHr: true,
			Discrepancies: []string{"email directory≠MFA", "phone HR≠directory"},
		},
		{RowSource: "HR", EmployeeID: "E2", Login: "NO ACCOUNT", Discrepancies: []string{"no account in directory"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{" CSV ", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	at := time.Date(2026, 2, 13, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "consolidated_20260213_090507.xlsx", FormatXLSX.Filename("consolidated", at))
	assert.Equal(t, "consolidated_20260213_090507.csv", FormatCSV.Filename("consolidated", at))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.ErrorIs(t, Write(io.Discard, "pdf", nil), ErrUnsupportedFormat)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utf8BOM))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM)))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Headers(), records[0])
	assert.Equal(t, "ivanov", records[1][2])
	assert.Equal(t, "Иванов Иван", records[1][12])
	assert.Equal(t, "Yes", records[1][22])
	assert.Equal(t, "email directory≠MFA; phone HR≠directory", records[1][24])
	assert.Equal(t, "No", records[2][22])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "ivanov", rows[1][2])
	assert.Equal(t, "HR", rows[2][0])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiver(t *testing.T) {
	t.Run("upload under prefix", func(t *testing.T) {
		client := &fakeS3{}
		a := NewArchiver(client, S3Config{Enabled: true, Bucket: "reports", Prefix: "idrecon/"}, nil)

		key, err := a.Upload(context.Background(), "c.csv", FormatCSV, []byte("data"))
		require.NoError(t, err)
		assert.Equal(t, "idrecon/c.csv", key)
		assert.Equal(t, "reports", *client.input.Bucket)
		assert.Equal(t, "idrecon/c.csv", *client.input.Key)
		assert.Equal(t, int64(4), *client.input.ContentLength)
		assert.Equal(t, "data", string(client.body))
		assert.Equal(t, "reports", a.Bucket())
	})

	t.Run("no prefix", func(t *testing.T) {
		a := NewArchiver(&fakeS3{}, S3Config{Bucket: "b"}, nil)
		assert.Equal(t, "x.xlsx", a.Key("x.xlsx"))
	})

	t.Run("put failure", func(t *testing.T) {
		a := NewArchiver(&fakeS3{err: errors.New("access denied")}, S3Config{Bucket: "b"}, nil)
		_, err := a.Upload(context.Background(), "x.xlsx", FormatXLSX, nil)
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("disabled", func(t *testing.T) {
		_, err := NewArchiverFromConfig(context.Background(), S3Config{}, nil)
		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})
}

func TestS3ConfigValidate(t *testing.T) {
	assert.NoError(t, (&S3Config{}).Validate())
	assert.Error(t, (&S3Config{Enabled: true}).Validate())
	assert.Error(t, (&S3Config{Enabled: true, Bucket: "b", AccessKeyID: "k"}).Validate())
	assert.NoError(t, (&S3Config{Enabled: true, Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}).Validate())
}

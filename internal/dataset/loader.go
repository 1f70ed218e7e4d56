package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sod/boss/internal/logging"
)

const (
	SplitTrain = "TRAIN"
	SplitTest  = "TEST"

	delimiter = "\t"
	nan       = "NaN"
	// maxLineBytes bounds a single UCR row.
	maxLineBytes = 16 * 1024 * 1024
)

var ErrEmptyLine = errors.New("empty line")

// Method selects the order of processing and normalization.
type Method int

const (
	// MethodProcessFirst pads or rescales before normalizing.
	MethodProcessFirst Method = iota
	// MethodNormalizeFirst normalizes before padding or rescaling.
	MethodNormalizeFirst
)

// Loader reads problems in the UCR archive layout:
// <path>/<problem>/<problem>_<TRAIN|TEST>.tsv
type Loader struct {
	path       string
	processor  Processor
	normalizer Normalizer
	method     Method
}

type LoaderOption func(*Loader)

func WithProcessor(p Processor) LoaderOption {
	return func(l *Loader) {
		l.processor = p
	}
}

func WithNormalizer(n Normalizer) LoaderOption {
	return func(l *Loader) {
		l.normalizer = n
	}
}

func WithMethod(m Method) LoaderOption {
	return func(l *Loader) {
		l.method = m
	}
}

func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:       path,
		processor:  NoProcessing{},
		normalizer: NoNormalizer{},
		method:     MethodProcessFirst,
	}
	for _, f := range opts {
		f(l)
	}
	return l
}

func (l *Loader) filename(problem, split string) string {
	return filepath.Join(l.path, problem, problem+"_"+split+".tsv")
}

// LoadRaw reads one split as stored: raw class values, no processing.
func (l *Loader) LoadRaw(ctx context.Context, problem, split string) ([]Sequence, error) {
	logger := logging.FromContext(ctx)
	filename := l.filename(problem, split)
	logger.Debugf("reading %s", filename)

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", filename, err)
	}
	defer f.Close()

	raw, err := ReadUCR(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", filename, err)
	}
	return raw, nil
}

// Load reads the train and test splits of a problem, encoding both with the
// labels of the train split.
func (l *Loader) Load(ctx context.Context, problem string) (train, test *Dataset, err error) {
	rawTrain, err := l.LoadRaw(ctx, problem, SplitTrain)
	if err != nil {
		return nil, nil, err
	}
	rawTest, err := l.LoadRaw(ctx, problem, SplitTest)
	if err != nil {
		return nil, nil, err
	}
	maxLen := maxLength(rawTrain, rawTest)
	l.Prepare(rawTrain, maxLen)
	l.Prepare(rawTest, maxLen)

	encoder := NewLabelEncoder(rawTrain)
	trainItems, err := encoder.Encode(rawTrain)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to encode train labels: %w", err)
	}
	testItems, err := encoder.Encode(rawTest)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to encode test labels: %w", err)
	}
	if train, err = New(problem, trainItems, encoder.Len()); err != nil {
		return nil, nil, fmt.Errorf("unable to create train dataset: %w", err)
	}
	if test, err = New(problem, testItems, encoder.Len()); err != nil {
		return nil, nil, fmt.Errorf("unable to create test dataset: %w", err)
	}
	return train.WithSplit(SplitTrain), test.WithSplit(SplitTest), nil
}

// Prepare harmonizes and normalizes every series in place.
func (l *Loader) Prepare(items []Sequence, maxLen int) {
	for i := range items {
		if l.method == MethodProcessFirst {
			items[i].Data = l.normalizer.Normalize(l.processor.Process(items[i].Data, maxLen))
			continue
		}
		items[i].Data = l.processor.Process(l.normalizer.Normalize(items[i].Data), maxLen)
	}
}

func maxLength(splits ...[]Sequence) int {
	var maxLen int
	for _, items := range splits {
		for i := range items {
			if items[i].Len() > maxLen {
				maxLen = items[i].Len()
			}
		}
	}
	return maxLen
}

// ReadUCR parses tab separated rows: the class value followed by the series.
// A NaN value terminates a variable length series.
func ReadUCR(r io.Reader) ([]Sequence, error) {
	var items []Sequence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seq, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		items = append(items, seq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to scan: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}
	return items, nil
}

func parseRow(line string) (Sequence, error) {
	fields := strings.Split(line, delimiter)
	if len(fields) < 2 {
		return Sequence{}, ErrEmptyLine
	}
	class, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Sequence{}, fmt.Errorf("unable to parse class %q: %w", fields[0], err)
	}
	data := make([]float64, 0, len(fields)-1)
	for _, field := range fields[1:] {
		field = strings.TrimSpace(field)
		if field == nan {
			break
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Sequence{}, fmt.Errorf("unable to parse value %q: %w", field, err)
		}
		data = append(data, v)
	}
	return Sequence{Data: data, Label: int(class)}, nil
}

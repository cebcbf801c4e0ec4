package tfidf

import "fmt"

// TFMode selects how a raw term count becomes a document weight.
type TFMode string

const (
	// TFL2 weights count × idf and scales every document row to unit L2 norm.
	TFL2 TFMode = "l2"
	// TFLength weights count/len(document) × idf.
	TFLength TFMode = "length"
	// TFRaw weights count × idf.
	TFRaw TFMode = "raw"
)

// Options configures BuildMatrix.
type Options struct {
	TF TFMode `yaml:"tf" json:"tf"`
	// SmoothIDF adds one to every document frequency and to n: ln((1+n)/(1+df)) + 1.
	// Without it idf is ln(n/df) + 1.
	SmoothIDF bool `yaml:"smooth_idf" json:"smooth_idf"`
	// SublinearTF replaces a count c with 1 + ln(c).
	SublinearTF bool `yaml:"sublinear_tf" json:"sublinear_tf"`
}

// DefaultOptions returns l2-normalized rows with smoothed idf.
func DefaultOptions() Options {
	return Options{TF: TFL2, SmoothIDF: true}
}

// Validate reports an unknown TF mode. An empty mode means TFL2.
func (o Options) Validate() error {
	switch o.TF {
	case "", TFL2, TFLength, TFRaw:
		return nil
	default:
		return fmt.Errorf("unknown tf mode %q (want l2, length or raw)", o.TF)
	}
}

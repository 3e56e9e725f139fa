package filtergraph

import "strings"

// Well-known link labels.
const (
	SourceVideo = "0:v"
	SourceAudio = "0:a"
	BaseLabel   = "base"
	OutputLabel = "outv"
)

// Kind classifies a statement by the role it plays in the chain.
type Kind int

const (
	KindScale Kind = iota
	KindSplit
	KindFill
	KindEffect
	KindComposite
	KindFinalize
)

func (k Kind) String() string {
	switch k {
	case KindScale:
		return "scale"
	case KindSplit:
		return "split"
	case KindFill:
		return "fill"
	case KindEffect:
		return "effect"
	case KindComposite:
		return "composite"
	case KindFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Filter is a single engine filter invocation.
type Filter struct {
	Name string
	Args string
}

func (f Filter) String() string {
	if f.Args == "" {
		return f.Name
	}
	return f.Name + "=" + f.Args
}

// Statement is one filter chain with labelled inputs and outputs.
type Statement struct {
	Kind    Kind
	Index   int // position in the active redaction sequence; -1 for base and finalize
	Inputs  []string
	Filters []Filter
	Outputs []string
}

func (s Statement) String() string {
	var b strings.Builder
	for _, in := range s.Inputs {
		b.WriteByte('[')
		b.WriteString(in)
		b.WriteByte(']')
	}
	for i, f := range s.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	for _, out := range s.Outputs {
		b.WriteByte('[')
		b.WriteString(out)
		b.WriteByte(']')
	}
	return b.String()
}

// Graph is an ordered processing graph whose final link is Output.
type Graph struct {
	Statements []Statement
	Output     string
}

// String serializes the graph to the engine grammar.
func (g Graph) String() string {
	parts := make([]string, len(g.Statements))
	for i, st := range g.Statements {
		parts[i] = st.String()
	}
	return strings.Join(parts, ";")
}

// Composites returns the time-gated overlay statements in order.
func (g Graph) Composites() []Statement {
	var out []Statement
	for _, st := range g.Statements {
		if st.Kind == KindComposite {
			out = append(out, st)
		}
	}
	return out
}

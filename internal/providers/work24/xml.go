package work24

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Repeating-row detection: a row element has at least minRowChildren
// children and repeats at least minRowRepeat times. Small listings fall back
// to any element with enough children.
const (
	minRowChildren = 3
	minRowRepeat   = 5
	sampleRows     = 10
)

type xmlNode struct {
	name     string
	text     strings.Builder
	children []*xmlNode
}

// ParseXMLRows finds the repeating row element of an XML listing and returns
// each row as child-name -> trimmed text.
func ParseXMLRows(body []byte) ([]map[string]any, error) {
	root, err := parseXMLTree(body)
	if err != nil {
		return nil, err
	}

	tag := detectRowTag(root, minRowRepeat)
	if tag == "" {
		tag = detectRowTag(root, 1)
	}
	if tag == "" {
		// no element carries row-shaped children: an empty result page
		return nil, nil
	}

	var rows []map[string]any
	walk(root, func(n *xmlNode) {
		if n == root || n.name != tag {
			return
		}
		row := make(map[string]any, len(n.children))
		for _, c := range n.children {
			row[c.name] = strings.TrimSpace(c.text.String())
		}
		rows = append(rows, row)
	})
	return rows, nil
}

func parseXMLTree(body []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	// The API declares EUC-KR on some mirrors while sending UTF-8.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var stack []*xmlNode
	var root *xmlNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "work24: parse xml listing")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("work24: empty xml listing")
	}
	return root, nil
}

func walk(n *xmlNode, fn func(*xmlNode)) {
	fn(n)
	for _, c := range n.children {
		walk(c, fn)
	}
}

// detectRowTag scores each tag by occurrences + 50 * average children over
// the first few occurrences and returns the best qualifying tag.
func detectRowTag(root *xmlNode, minRepeat int) string {
	type stat struct {
		count   int
		sampled int
		kids    int
		order   int
	}
	stats := map[string]*stat{}
	walk(root, func(n *xmlNode) {
		if n == root {
			return
		}
		s, ok := stats[n.name]
		if !ok {
			s = &stat{order: len(stats)}
			stats[n.name] = s
		}
		s.count++
		if s.sampled < sampleRows {
			s.sampled++
			s.kids += len(n.children)
		}
	})

	best, bestScore, bestOrder := "", -1.0, 0
	for tag, s := range stats {
		if tag == root.name {
			continue
		}
		avg := float64(s.kids) / float64(s.sampled)
		if avg < minRowChildren || s.count < minRepeat {
			continue
		}
		score := float64(s.count) + avg*50
		if score > bestScore || (score == bestScore && s.order < bestOrder) {
			best, bestScore, bestOrder = tag, score, s.order
		}
	}
	return best
}

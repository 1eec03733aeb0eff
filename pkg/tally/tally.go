//Package tally aggregates per-frame possession votes. Every operation here is a plain sum, so
//partial tallies can be built per worker and combined in any order.
package tally

import (
	"sort"
	"strings"
)

//Reduce sums all counts emitted for tag.
func Reduce(tag string, counts []int64) (string, int64) {
	var total int64
	for _, c := range counts {
		total += c
	}

	return tag, total
}

//Tally is a partial aggregate, tag -> count.
type Tally map[string]int64

//Add adds n votes for tag.
func (t Tally) Add(tag string, n int64) {
	t[tag] += n
}

//Merge folds o into t.
func (t Tally) Merge(o Tally) {
	for tag, n := range o {
		t[tag] += n
	}
}

//Tags returns the tags of t in lexical order.
func (t Tally) Tags() []string {
	tags := make([]string, 0, len(t))
	for tag := range t {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

//Counters are per-worker event counters keyed by group and name.
type Counters map[string]int64

func counterKey(group, name string) string {
	return group + "." + name
}

//Inc adds n to the counter group/name.
func (c Counters) Inc(group, name string, n int64) {
	c[counterKey(group, name)] += n
}

//Get returns the value of the counter group/name.
func (c Counters) Get(group, name string) int64 {
	return c[counterKey(group, name)]
}

//Merge folds o into c.
func (c Counters) Merge(o Counters) {
	for k, n := range o {
		c[k] += n
	}
}

//String renders the counters sorted by key, for logging.
func (c Counters) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(formatInt(c[k]))
	}

	return sb.String()
}

package scriptgen

import (
	"sort"
	"strings"
	"unicode"

	"clipbot/config"
	"clipbot/types"
)

var stopWordsPT = toSet(`a o as os um uma uns umas de da do das dos em na no nas nos por para pra com sem sob sobre
entre até e ou mas que se é são foi era ser ter tem têm há isso isto esse essa este esta aquele aquela
ele ela eles elas você vocês nós eu seu sua seus suas meu minha nosso nossa lhe lhes já não sim mais menos
muito muita muitos muitas pouco como quando onde porque qual quais quem também ainda só cada todo toda
todos todas outro outra outros outras mesmo mesma pode podem vai vão está estão estava fazer faz fez
ao aos à às pelo pela pelos pelas num numa dele dela deles delas então assim aqui ali lá sua ano anos
vez vezes coisa coisas fato fatos curioso curiosos curiosidade curiosidades primeiro segundo terceiro`)

var stopWordsEN = toSet(`a an the of in on at to for from by with without about into over under and or but
is are was were be been being have has had do does did this that these those it its he she they them
you we i my your our their his her not no yes more less very much many few how when where why which who
also still only each every other same can could will would should may might just than then there here
fact facts first second third thing things`)

// Keywords returns up to n content words from text ranked by frequency, then length.
func Keywords(text string, n int, lang string) []string {
	stop := stopWordsPT
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		stop = stopWordsEN
	}

	type entry struct {
		word  string
		count int
		first int
	}
	index := map[string]*entry{}
	var order []*entry

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	for i, w := range words {
		w = strings.Trim(w, "-")
		if len([]rune(w)) < 3 || isNumber(w) {
			continue
		}
		if _, ok := stop[w]; ok {
			continue
		}
		e, ok := index[w]
		if !ok {
			e = &entry{word: w, first: i}
			index[w] = e
			order = append(order, e)
		}
		e.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		li, lj := len([]rune(order[i].word)), len([]rune(order[j].word))
		if li != lj {
			return li > lj
		}
		return order[i].first < order[j].first
	})

	out := make([]string, 0, n)
	for _, e := range order {
		if len(out) == n {
			break
		}
		out = append(out, e.word)
	}
	return out
}

// AssignKeywords fills each segment's keywords, using fallback when a segment has none.
func AssignKeywords(segments []types.Segment, lang string, fallback []string) {
	for i := range segments {
		kw := Keywords(segments[i].Text, config.KeywordsPerSegment, lang)
		if len(kw) == 0 {
			kw = append([]string(nil), fallback...)
		}
		segments[i].Keywords = kw
	}
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

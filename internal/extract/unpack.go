package extract

import (
	"regexp"
	"time"

	"github.com/dop251/goja"
)

// packedRe matches a Dean Edwards packer call: eval(function(p,a,c,k,e,d){...}(...)).
// Group 1 is the immediately invoked function expression.
var packedRe = regexp.MustCompile(`(?s)eval\((function\(p,a,c,k,e,[dr]\)\{.+?\}\(.+?\.split\('\|'\)(?:,0,\{\})?\))\)`)

const unpackTimeout = 2 * time.Second

// Unpack evaluates every packed script in content and returns the unpacked
// sources. Scripts that fail to evaluate are skipped.
func Unpack(content string) []string {
	var out []string
	first := true
	search(content, func(text string) bool {
		if first {
			first = false
		} else {
			out = append(out, text)
		}
		return false
	})
	return out
}

func evalPacked(expr string) (string, error) {
	vm := goja.New()
	timer := time.AfterFunc(unpackTimeout, func() {
		vm.Interrupt("unpack timeout")
	})
	defer timer.Stop()

	v, err := vm.RunString("(" + expr + ")")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// search calls match on content and then on each packed script in it,
// unpacking one script at a time, until match reports a hit.
func search(content string, match func(text string) bool) bool {
	if match(content) {
		return true
	}
	for _, m := range packedRe.FindAllStringSubmatch(content, -1) {
		if src, err := evalPacked(m[1]); err == nil && src != "" && match(src) {
			return true
		}
	}
	return false
}

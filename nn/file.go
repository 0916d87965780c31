package nn

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadSamples parses comma separated rows of inputNum inputs followed by
// outputNum expected values. Blank lines are skipped.
func ReadSamples(reader io.Reader, inputNum, outputNum int) (Samples, error) {
	scanner := bufio.NewScanner(reader)
	var samples Samples
	var lineNum int
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		splits := strings.Split(text, ",")
		if len(splits) != inputNum+outputNum {
			return samples, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(splits),
				expected: inputNum + outputNum,
			}
		}
		inputs := make([]float64, inputNum)
		targets := make([]float64, outputNum)

		for i, split := range splits {
			num, err := strconv.ParseFloat(strings.TrimSpace(split), 64)
			if err != nil {
				return samples, errors.Wrapf(err, "parsing value %d at line %d", i+1, lineNum)
			}
			if i < inputNum {
				inputs[i] = num
			} else {
				targets[i-inputNum] = num
			}
		}
		samples = append(samples, Sample{
			Input:    inputs,
			Expected: targets,
		})
	}
	if err := scanner.Err(); err != nil {
		return samples, errors.Wrap(err, "reading samples")
	}
	return samples, nil
}

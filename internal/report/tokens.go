package report

import (
	"encoding/json"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// payloadEncoding tokenizes the JSON handed back to the assistant. Its BPE
// ranks are embedded by the offline loader, so estimating never touches the
// network.
const payloadEncoding = tiktoken.MODEL_CL100K_BASE

// bytesPerToken is the fallback ratio for compact JSON when no encoder loads.
const bytesPerToken = 3

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken

	estimateTokensFunc = encodedLength
)

// EstimateTokens approximates how many tokens the text occupies.
func EstimateTokens(text string) int {
	return estimateTokensFunc(text)
}

// EstimateJSON approximates the token size of v once marshalled.
func EstimateJSON(v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return EstimateTokens(string(b)), nil
}

// encodedLength counts ordinary tokens only; upstream text may contain
// special-token markers that must not be treated as control sequences.
func encodedLength(text string) int {
	if text == "" {
		return 0
	}
	if enc := payloadEncoder(); enc != nil {
		return len(enc.EncodeOrdinary(text))
	}
	return max(1, len(text)/bytesPerToken)
}

func payloadEncoder() *tiktoken.Tiktoken {
	encoderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		if enc, err := tiktoken.GetEncoding(payloadEncoding); err == nil {
			encoder = enc
		}
	})
	return encoder
}

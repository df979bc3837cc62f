package consumer

import "time"

func SetRetryBackoff(d time.Duration) func() {
	prevBackoff, prevMax := retryBackoff, maxRetryBackoff
	retryBackoff, maxRetryBackoff = d, d
	return func() { retryBackoff, maxRetryBackoff = prevBackoff, prevMax }
}

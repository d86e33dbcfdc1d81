package medium

import (
	"fmt"
	"strconv"
)

// KeyName returns the name of the i-th generated key.
func KeyName(i int) string {
	return "key-" + strconv.Itoa(i)
}

// Seed fills a store with n keys named by KeyName. The data of each key is
// its index.
func Seed(s Store, n int) error {
	for i := 0; i < n; i++ {
		err := s.Seed(KeyName(i), []byte(strconv.Itoa(i)))
		if err != nil {
			return fmt.Errorf("seeding %s: %w", KeyName(i), err)
		}
	}

	return nil
}

package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockerSerialisesPerKey(t *testing.T) {
	locks := NewKeyLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(studentKey(7))
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size())
}

func TestKeyLockerIndependentKeys(t *testing.T) {
	locks := NewKeyLocker()
	unlockA := locks.Lock(courseKey("CS101"))
	unlockB := locks.Lock(courseKey("MATH200"))
	assert.Equal(t, 2, locks.size())
	unlockA()
	unlockB()
	assert.Zero(t, locks.size())
}

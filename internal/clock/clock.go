/*
 * osimsim - Simulated clock.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package clock models the simulator's logical time source: a
// monotonically increasing, non-negative tick counter incremented once
// per retired instruction.
package clock

// Clock is a non-negative integer tick counter. The zero value is ready
// to use, starting at tick 0.
type Clock struct {
	ticks int
}

// Now returns the current tick.
func (c *Clock) Now() int {
	return c.ticks
}

// Tick advances the clock by one and returns the new value.
func (c *Clock) Tick() int {
	c.ticks++
	return c.ticks
}

// Advance moves the clock forward by n ticks (n must be non-negative)
// and returns the new value; used by the scheduler's idle step.
func (c *Clock) Advance(n int) int {
	if n < 0 {
		n = 0
	}
	c.ticks += n
	return c.ticks
}

// Reset returns the clock to tick 0.
func (c *Clock) Reset() {
	c.ticks = 0
}

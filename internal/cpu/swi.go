/*
 * osimsim - CPU software interrupt handling.
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

package cpu

import (
	"github.com/rcornwell/osimsim/internal/clock"
	"github.com/rcornwell/osimsim/internal/pcb"
)

// swi dispatches a software interrupt. The only error it returns is a
// failed exec (SWI 11); otherwise the handlers mutate c.running and
// p.State directly, following §4.2.1 and §4.3.3: terminate, I/O wait,
// yield, fork, exec, and wait with live children all suspend the
// current quantum and commit registers back to the PCB. Print, produce,
// unlock and a successful consume or lock continue within the same
// quantum; a consume from an empty buffer or a lock attempt on a held
// mutex rewinds pc by one instruction and ends the quantum, so the
// attempt is repeated the next time the process is scheduled.
func (c *cpu) swi(p *pcb.PCB, n uint32, sys System, clk *clock.Clock) error {
	switch n {
	case SWITerminate:
		commit(p, c)
		p.Terminate(clk.Now())
		c.running = false

	case SWIPrint:
		sys.Print(p.Pid, c.regs[0])

	case SWIIOWait:
		commit(p, c)
		p.Wait()
		p.CPUCode = SWIIOWait
		c.running = false

	case SWIYield:
		commit(p, c)
		p.Wait()
		p.CPUCode = SWIYield
		c.running = false

	case SWIFork:
		commit(p, c)
		childPid := sys.Fork(p)
		c.regs[0] = uint32(childPid)
		c.running = false

	case SWIExec:
		commit(p, c)
		if err := sys.Exec(p); err != nil {
			return err
		}
		// Pick up the registers and pc Exec installed, so Run's final
		// commit does not overwrite them with the old image's values.
		c.regs = p.Registers
		c.regs[RPC] = p.PC
		c.running = false

	case SWIWait:
		commit(p, c)
		if sys.ChildrenTerminated(p) {
			// Children are already done: nothing to wait for, keep running.
			return nil
		}
		p.Ready(clk.Now())
		c.running = false

	case SWIProduce:
		sys.Produce("shared1", c.regs[0])

	case SWIConsume:
		v, ok := sys.Consume("shared1")
		if !ok {
			c.regs[RPC] -= InstructionSize
			c.running = false
			return nil
		}
		c.regs[0] = v

	case SWIMutexWait:
		if !sys.MutexTryLock() {
			c.regs[RPC] -= InstructionSize
			c.running = false
		}

	case SWIMutexSignal:
		sys.MutexUnlock()

	default:
		// Unknown SWI numbers are silently ignored, matching the
		// original interpreter's open-ended syscall table.
	}
	return nil
}

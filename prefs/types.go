// This file is part of gstexcache.
//
// gstexcache is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gstexcache is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gstexcache.  If not, see <https://www.gnu.org/licenses/>.
package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Value is a preference value. Each Pref type documents the values it accepts
// in its Set() function. Every type accepts a string.
type Value interface{}

// Pref is implemented by all types in the prefs system.
type Pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
	Reset() error
}

// hooks are called either side of a value being stored, whether or not the
// value has changed. An error from the pre hook prevents the value being
// stored.
type hooks struct {
	pre  func(value Value) error
	post func(value Value) error
}

// SetHookPre sets the function called before a new value is stored.
func (h *hooks) SetHookPre(f func(value Value) error) {
	h.pre = f
}

// SetHookPost sets the function called after a new value is stored.
func (h *hooks) SetHookPost(f func(value Value) error) {
	h.post = f
}

func (h *hooks) store(v *atomic.Value, nv Value) error {
	if h.pre != nil {
		if err := h.pre(nv); err != nil {
			return err
		}
	}
	v.Store(nv)
	if h.post != nil {
		return h.post(nv)
	}
	return nil
}

// Bool is a boolean preference.
type Bool struct {
	hooks
	value atomic.Value
}

func (p *Bool) String() string {
	return strconv.FormatBool(p.Get().(bool))
}

// Set accepts a bool or a string. Strings are parsed with strconv.ParseBool.
func (p *Bool) Set(v Value) error {
	switch v := v.(type) {
	case bool:
		return p.store(&p.value, v)
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: bool: %w", err)
		}
		return p.store(&p.value, b)
	}
	return fmt.Errorf("prefs: bool: cannot set from %T", v)
}

// Get returns the value as a bool.
func (p *Bool) Get() Value {
	if v := p.value.Load(); v != nil {
		return v.(bool)
	}
	return false
}

// Reset the value to false.
func (p *Bool) Reset() error {
	return p.Set(false)
}

// Int is an integer preference. The range of accepted values can be limited
// with SetRange().
type Int struct {
	hooks
	value atomic.Value

	ranged   bool
	min, max int
}

func (p *Int) String() string {
	return strconv.Itoa(p.Get().(int))
}

// SetRange limits the values accepted by Set() to the inclusive range. The
// current value is not checked.
func (p *Int) SetRange(min, max int) {
	p.ranged = true
	p.min = min
	p.max = max
}

// Set accepts an int or a string.
func (p *Int) Set(v Value) error {
	var n int
	switch v := v.(type) {
	case int:
		n = v
	case string:
		var err error
		n, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: int: %w", err)
		}
	default:
		return fmt.Errorf("prefs: int: cannot set from %T", v)
	}
	if p.ranged && (n < p.min || n > p.max) {
		return fmt.Errorf("prefs: int: %d outside of range %d to %d", n, p.min, p.max)
	}
	return p.store(&p.value, n)
}

// Get returns the value as an int.
func (p *Int) Get() Value {
	if v := p.value.Load(); v != nil {
		return v.(int)
	}
	return 0
}

// Reset the value to zero, or to the bottom of the range if zero is outside
// of it.
func (p *Int) Reset() error {
	if p.ranged && p.min > 0 {
		return p.Set(p.min)
	}
	return p.Set(0)
}

// Float is a floating-point preference. The range of accepted values can be
// limited with SetRange().
type Float struct {
	hooks
	value atomic.Value

	ranged   bool
	min, max float64
}

func (p *Float) String() string {
	return strconv.FormatFloat(p.Get().(float64), 'f', -1, 64)
}

// SetRange limits the values accepted by Set() to the inclusive range. The
// current value is not checked.
func (p *Float) SetRange(min, max float64) {
	p.ranged = true
	p.min = min
	p.max = max
}

// Set accepts a float32, float64, int or string.
func (p *Float) Set(v Value) error {
	var f float64
	switch v := v.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("prefs: float: %w", err)
		}
	default:
		return fmt.Errorf("prefs: float: cannot set from %T", v)
	}
	if p.ranged && (f < p.min || f > p.max) {
		return fmt.Errorf("prefs: float: %g outside of range %g to %g", f, p.min, p.max)
	}
	return p.store(&p.value, f)
}

// Get returns the value as a float64.
func (p *Float) Get() Value {
	if v := p.value.Load(); v != nil {
		return v.(float64)
	}
	return float64(0)
}

// Reset the value to zero, or to the bottom of the range if zero is outside
// of it.
func (p *Float) Reset() error {
	if p.ranged && p.min > 0 {
		return p.Set(p.min)
	}
	return p.Set(0.0)
}

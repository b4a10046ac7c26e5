package hwio

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type tagOpts struct {
	offset    uint32
	hasOffset bool
	bank      int
	reset     uint64
	rwmask    uint64
	hasRwmask bool
	size      uint64
	flags     RWFlags
	rcb, wcb  string // callback method names, empty if none
}

func parseUint(key, val string) (uint64, error) {
	n, err := strconv.ParseUint(val, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, val, err)
	}
	return n, nil
}

// parseTag parses an hwio struct tag:
//
//	offset=0x12     Byte offset of the register within its bank. Fields
//	                without an offset are initialized by InitRegs but never
//	                mapped by MapBank.
//	bank=NN         Bank number (default 0), allowing a structure to expose
//	                several banks.
//	reset=0x99      Value after InitRegs.
//	rwmask=0xF0     Bits affected by writes (default all).
//	size=0x400      Size in bytes of a Mem or a Device.
//	readonly        Writes are discarded.
//	writeonly       Reads return 0.
//	w1c             Writing 1 to a bit clears it.
//	rcb[=Method]    Read callback. Default method name is Read + the
//	                upper-cased field name.
//	wcb[=Method]    Write callback. Default method name is Write + the
//	                upper-cased field name.
func parseTag(field, tag string) (tagOpts, error) {
	var opts tagOpts
	for _, opt := range strings.Split(tag, ",") {
		if opt == "" {
			continue
		}
		key, val, hasVal := strings.Cut(opt, "=")
		var err error
		switch key {
		case "offset":
			var n uint64
			n, err = parseUint(key, val)
			opts.offset, opts.hasOffset = uint32(n), true
		case "bank":
			var n uint64
			n, err = parseUint(key, val)
			opts.bank = int(n)
		case "reset":
			opts.reset, err = parseUint(key, val)
		case "rwmask":
			opts.rwmask, err = parseUint(key, val)
			opts.hasRwmask = true
		case "size":
			opts.size, err = parseUint(key, val)
		case "readonly":
			opts.flags |= ReadOnlyFlag
		case "writeonly":
			opts.flags |= WriteOnlyFlag
		case "w1c":
			opts.flags |= W1CFlag
		case "rcb":
			opts.rcb = "Read" + strings.ToUpper(field)
			if hasVal {
				opts.rcb = val
			}
		case "wcb":
			opts.wcb = "Write" + strings.ToUpper(field)
			if hasVal {
				opts.wcb = val
			}
		default:
			err = fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return opts, fmt.Errorf("field %s: %w", field, err)
		}
	}
	return opts, nil
}

func method[F any](v reflect.Value, field, name string) (F, error) {
	var zero F
	m := v.MethodByName(name)
	if !m.IsValid() {
		return zero, fmt.Errorf("field %s: missing method %s", field, name)
	}
	f, ok := m.Interface().(F)
	if !ok {
		return zero, fmt.Errorf("field %s: method %s has type %s, want %T", field, name, m.Type(), zero)
	}
	return f, nil
}

func initReg16(v reflect.Value, name string, r *Reg16, opts tagOpts) error {
	if opts.reset > 0xFFFF || opts.rwmask > 0xFFFF {
		return fmt.Errorf("field %s: value too big for 16-bit register", name)
	}
	*r = Reg16{Name: name, Value: uint16(opts.reset), Flags: opts.flags}
	if opts.hasRwmask {
		r.RoMask = ^uint16(opts.rwmask)
	}
	var err error
	if opts.rcb != "" {
		if r.ReadCb, err = method[func(uint16) uint16](v, name, opts.rcb); err != nil {
			return err
		}
	}
	if opts.wcb != "" {
		if r.WriteCb, err = method[func(uint16, uint16)](v, name, opts.wcb); err != nil {
			return err
		}
	}
	return nil
}

func initReg32(v reflect.Value, name string, r *Reg32, opts tagOpts) error {
	if opts.reset > 0xFFFFFFFF || opts.rwmask > 0xFFFFFFFF {
		return fmt.Errorf("field %s: value too big for 32-bit register", name)
	}
	*r = Reg32{Name: name, Value: uint32(opts.reset), Flags: opts.flags}
	if opts.hasRwmask {
		r.RoMask = ^uint32(opts.rwmask)
	}
	var err error
	if opts.rcb != "" {
		if r.ReadCb, err = method[func(uint32) uint32](v, name, opts.rcb); err != nil {
			return err
		}
	}
	if opts.wcb != "" {
		if r.WriteCb, err = method[func(uint32, uint32)](v, name, opts.wcb); err != nil {
			return err
		}
	}
	return nil
}

// InitRegs initializes all the Reg16, Reg32, Mem and Device fields of the
// structure pointed to by data, according to their hwio struct tag. Callback
// methods are looked up on data.
func InitRegs(data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: InitRegs wants a pointer to struct, got %T", data)
	}
	st := v.Elem().Type()
	for i := range st.NumField() {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		if !f.IsExported() {
			return fmt.Errorf("hwio: field %s: must be exported", f.Name)
		}
		opts, err := parseTag(f.Name, tag)
		if err != nil {
			return fmt.Errorf("hwio: %w", err)
		}

		switch r := v.Elem().Field(i).Addr().Interface().(type) {
		case *Reg16:
			err = initReg16(v, f.Name, r, opts)
		case *Reg32:
			err = initReg32(v, f.Name, r, opts)
		case *Mem:
			if opts.size == 0 {
				err = fmt.Errorf("field %s: missing size", f.Name)
				break
			}
			var flags MemFlags
			if opts.flags&ReadOnlyFlag != 0 {
				flags |= MemFlagReadOnly
			}
			*r = *NewMem(f.Name, int(opts.size), flags)
		case *Device:
			if opts.size == 0 {
				err = fmt.Errorf("field %s: missing size", f.Name)
				break
			}
			r.Name = f.Name
			r.init(uint32(opts.size))
		default:
			err = fmt.Errorf("field %s: unsupported type %T", f.Name, r)
		}
		if err != nil {
			return fmt.Errorf("hwio: %w", err)
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

type regInfo struct {
	offset uint32
	regPtr any
}

var errNotStructPtr = errors.New("hwio: bank must be a pointer to struct")

// bankGetRegs returns the fields of bank having an offset and the given bank
// number.
func bankGetRegs(bank any, bankNum int) ([]regInfo, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, errNotStructPtr
	}
	var regs []regInfo
	st := v.Elem().Type()
	for i := range st.NumField() {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(f.Name, tag)
		if err != nil {
			return nil, fmt.Errorf("hwio: %w", err)
		}
		if !opts.hasOffset || opts.bank != bankNum {
			continue
		}
		regs = append(regs, regInfo{
			offset: opts.offset,
			regPtr: v.Elem().Field(i).Addr().Interface(),
		})
	}
	return regs, nil
}

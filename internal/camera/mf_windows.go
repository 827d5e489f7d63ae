//go:build windows

package camera

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	mfAttrSourceType       = windows.GUID{Data1: 0xc60ac5fe, Data2: 0x252a, Data3: 0x478f, Data4: [8]byte{0xa0, 0xef, 0xbc, 0x8f, 0xa5, 0xf7, 0xca, 0xd3}}
	mfAttrSourceTypeVidcap = windows.GUID{Data1: 0x8ac3587a, Data2: 0x4ae7, Data3: 0x42d8, Data4: [8]byte{0x99, 0xe0, 0x0a, 0x60, 0x13, 0xee, 0xf9, 0x0f}}
	mfAttrFriendlyName     = windows.GUID{Data1: 0x60d0e559, Data2: 0x52f8, Data3: 0x4fa2, Data4: [8]byte{0xbb, 0xce, 0xac, 0xdb, 0x34, 0xa8, 0xec, 0x01}}

	iidIMFMediaSource   = windows.GUID{Data1: 0x279a808d, Data2: 0xaec7, Data3: 0x40c8, Data4: [8]byte{0x9c, 0x6b, 0xa6, 0xb4, 0x92, 0xc7, 0x8a, 0x66}}
	iidIAMCameraControl = windows.GUID{Data1: 0xc6e13370, Data2: 0x30ac, Data3: 0x11d0, Data4: [8]byte{0xa1, 0x8c, 0x00, 0xa0, 0xc9, 0x11, 0x89, 0x56}}
	iidIAMVideoProcAmp  = windows.GUID{Data1: 0xc6e13360, Data2: 0x30ac, Data3: 0x11d0, Data4: [8]byte{0xa1, 0x8c, 0x00, 0xa0, 0xc9, 0x11, 0x89, 0x56}}
)

var (
	modmfplat = windows.NewLazySystemDLL("mfplat.dll")
	modmf     = windows.NewLazySystemDLL("mf.dll")

	procMFStartup           = modmfplat.NewProc("MFStartup")
	procMFCreateAttributes  = modmfplat.NewProc("MFCreateAttributes")
	procMFEnumDeviceSources = modmf.NewProc("MFEnumDeviceSources")
)

const (
	mfVersion         = 0x00020070
	sFalse            = 1
	flagsManual int32 = 0x0002
)

func hresult(op string, hr uintptr) error {
	if hr == 0 {
		return nil
	}
	return fmt.Errorf("%s failed: 0x%08x", op, uint32(hr))
}

type mfAttributesVtbl struct {
	QueryInterface     uintptr
	AddRef             uintptr
	Release            uintptr
	GetItem            uintptr
	GetItemType        uintptr
	CompareItem        uintptr
	Compare            uintptr
	GetUINT32          uintptr
	GetUINT64          uintptr
	GetDouble          uintptr
	GetGUID            uintptr
	GetStringLength    uintptr
	GetString          uintptr
	GetAllocatedString uintptr
	GetBlobSize        uintptr
	GetBlob            uintptr
	GetAllocatedBlob   uintptr
	GetUnknown         uintptr
	SetItem            uintptr
	DeleteItem         uintptr
	DeleteAllItems     uintptr
	SetUINT32          uintptr
	SetUINT64          uintptr
	SetDouble          uintptr
	SetGUID            uintptr
	SetString          uintptr
	SetBlob            uintptr
	SetUnknown         uintptr
	LockStore          uintptr
	UnlockStore        uintptr
	GetCount           uintptr
	GetItemByIndex     uintptr
	CopyAllItems       uintptr
}

type mfAttributes struct {
	vtbl *mfAttributesVtbl
}

func (a *mfAttributes) release() {
	syscall.SyscallN(a.vtbl.Release, uintptr(unsafe.Pointer(a)))
}

func (a *mfAttributes) setGUID(key, value *windows.GUID) error {
	hr, _, _ := syscall.SyscallN(a.vtbl.SetGUID, uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(value)))
	return hresult("IMFAttributes.SetGUID", hr)
}

func (a *mfAttributes) getString(key *windows.GUID) (string, error) {
	var length uint32
	hr, _, _ := syscall.SyscallN(a.vtbl.GetStringLength, uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(&length)))
	if err := hresult("IMFAttributes.GetStringLength", hr); err != nil {
		return "", err
	}

	buf := make([]uint16, length+1)
	hr, _, _ = syscall.SyscallN(a.vtbl.GetString, uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(key)), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0)
	if err := hresult("IMFAttributes.GetString", hr); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf), nil
}

type mfActivateVtbl struct {
	mfAttributesVtbl
	ActivateObject uintptr
	ShutdownObject uintptr
	DetachObject   uintptr
}

type mfActivate struct {
	vtbl *mfActivateVtbl
}

func (a *mfActivate) attributes() *mfAttributes {
	return (*mfAttributes)(unsafe.Pointer(a))
}

func (a *mfActivate) release() {
	syscall.SyscallN(a.vtbl.Release, uintptr(unsafe.Pointer(a)))
}

func (a *mfActivate) activate(iid *windows.GUID) (unsafe.Pointer, error) {
	var obj unsafe.Pointer
	hr, _, _ := syscall.SyscallN(a.vtbl.ActivateObject, uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&obj)))
	return obj, hresult("IMFActivate.ActivateObject", hr)
}

type mfMediaSourceVtbl struct {
	QueryInterface               uintptr
	AddRef                       uintptr
	Release                      uintptr
	GetEvent                     uintptr
	BeginGetEvent                uintptr
	EndGetEvent                  uintptr
	QueueEvent                   uintptr
	GetCharacteristics           uintptr
	CreatePresentationDescriptor uintptr
	Start                        uintptr
	Stop                         uintptr
	Pause                        uintptr
	Shutdown                     uintptr
}

type mfMediaSource struct {
	vtbl *mfMediaSourceVtbl
}

func (s *mfMediaSource) queryInterface(iid *windows.GUID) (unsafe.Pointer, error) {
	var obj unsafe.Pointer
	hr, _, _ := syscall.SyscallN(s.vtbl.QueryInterface, uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&obj)))
	return obj, hresult("IMFMediaSource.QueryInterface", hr)
}

func (s *mfMediaSource) shutdown() {
	syscall.SyscallN(s.vtbl.Shutdown, uintptr(unsafe.Pointer(s)))
	syscall.SyscallN(s.vtbl.Release, uintptr(unsafe.Pointer(s)))
}

// amControlVtbl matches both IAMCameraControl and IAMVideoProcAmp.
type amControlVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
	GetRange       uintptr
	Set            uintptr
	Get            uintptr
}

type amControl struct {
	vtbl *amControlVtbl
}

func (c *amControl) release() {
	syscall.SyscallN(c.vtbl.Release, uintptr(unsafe.Pointer(c)))
}

func (c *amControl) get(id int32) (int32, error) {
	var value, flags int32
	hr, _, _ := syscall.SyscallN(c.vtbl.Get, uintptr(unsafe.Pointer(c)), uintptr(id),
		uintptr(unsafe.Pointer(&value)), uintptr(unsafe.Pointer(&flags)))
	return value, hresult("Get", hr)
}

func (c *amControl) set(id, value, flags int32) error {
	hr, _, _ := syscall.SyscallN(c.vtbl.Set, uintptr(unsafe.Pointer(c)), uintptr(id),
		uintptr(value), uintptr(flags))
	return hresult("Set", hr)
}

// MediaFoundationBinder enumerates video capture sources with Media
// Foundation and binds the camera-control interfaces of the one that
// matches.
type MediaFoundationBinder struct {
	once       sync.Once
	startupErr error
}

// NewMediaFoundationBinder creates a binder. COM and Media Foundation are
// initialised on first Bind.
func NewMediaFoundationBinder() *MediaFoundationBinder {
	return &MediaFoundationBinder{}
}

func (b *MediaFoundationBinder) startup() error {
	b.once.Do(func() {
		if err := windows.CoInitializeEx(0, windows.COINIT_MULTITHREADED); err != nil && err != syscall.Errno(sFalse) {
			b.startupErr = fmt.Errorf("CoInitializeEx: %w", err)
			return
		}
		hr, _, _ := syscall.SyscallN(procMFStartup.Addr(), mfVersion, 0)
		b.startupErr = hresult("MFStartup", hr)
	})
	return b.startupErr
}

// Bind implements FilterBinder.
func (b *MediaFoundationBinder) Bind(ctx context.Context, match string) (Filter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := b.startup(); err != nil {
		return nil, err
	}

	var attrs *mfAttributes
	hr, _, _ := syscall.SyscallN(procMFCreateAttributes.Addr(), uintptr(unsafe.Pointer(&attrs)), 1)
	if err := hresult("MFCreateAttributes", hr); err != nil {
		return nil, err
	}
	defer attrs.release()

	if err := attrs.setGUID(&mfAttrSourceType, &mfAttrSourceTypeVidcap); err != nil {
		return nil, err
	}

	var list **mfActivate
	var count uint32
	hr, _, _ = syscall.SyscallN(procMFEnumDeviceSources.Addr(), uintptr(unsafe.Pointer(attrs)),
		uintptr(unsafe.Pointer(&list)), uintptr(unsafe.Pointer(&count)))
	if err := hresult("MFEnumDeviceSources", hr); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, match)
	}

	activates := unsafe.Slice(list, count)
	defer func() {
		for _, a := range activates {
			a.release()
		}
		windows.CoTaskMemFree(unsafe.Pointer(list))
	}()

	needle := strings.ToLower(match)
	for _, a := range activates {
		name, err := a.attributes().getString(&mfAttrFriendlyName)
		if err != nil || !strings.Contains(strings.ToLower(name), needle) {
			continue
		}

		obj, err := a.activate(&iidIMFMediaSource)
		if err != nil {
			return nil, err
		}
		f := &mfFilter{name: name, source: (*mfMediaSource)(obj)}
		if p, err := f.source.queryInterface(&iidIAMCameraControl); err == nil {
			f.camera = (*amControl)(p)
		}
		if p, err := f.source.queryInterface(&iidIAMVideoProcAmp); err == nil {
			f.procAmp = (*amControl)(p)
		}
		return f, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, match)
}

type mfFilter struct {
	mu      sync.Mutex
	name    string
	source  *mfMediaSource
	camera  *amControl
	procAmp *amControl
}

func (f *mfFilter) FriendlyName() string { return f.name }

func (f *mfFilter) control(iface ControlInterface) (*amControl, error) {
	var c *amControl
	switch iface {
	case CameraControlInterface:
		c = f.camera
	case VideoProcAmpInterface:
		c = f.procAmp
	}
	if c == nil {
		return nil, ErrUnsupported
	}
	return c, nil
}

func (f *mfFilter) Get(iface ControlInterface, id int32) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.control(iface)
	if err != nil {
		return 0, err
	}
	return c.get(id)
}

func (f *mfFilter) Set(iface ControlInterface, id, value int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.control(iface)
	if err != nil {
		return err
	}
	return c.set(id, value, flagsManual)
}

func (f *mfFilter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.camera != nil {
		f.camera.release()
		f.camera = nil
	}
	if f.procAmp != nil {
		f.procAmp.release()
		f.procAmp = nil
	}
	if f.source != nil {
		f.source.shutdown()
		f.source = nil
	}
	return nil
}

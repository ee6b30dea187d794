package h5go

import "strconv"

// ID is a raw HDF5 identifier (hid_t). It is issued and owned by the library,
// which may release it and hand the same value out again for an unrelated object.
type ID int64

// InvalidID is the out-of-band identifier value (H5I_INVALID_HID).
const InvalidID ID = -1

// IDType is the category of an identifier (H5I_type_t).
type IDType int32

// Identifier categories, in the HDF5 1.12+ layout.
// BadID and NTypes are sentinels; only categories strictly between them are real.
const (
	BadID IDType = -1

	TypeFile         IDType = 1
	TypeGroup        IDType = 2
	TypeDatatype     IDType = 3
	TypeDataspace    IDType = 4
	TypeDataset      IDType = 5
	TypeMap          IDType = 6
	TypeAttr         IDType = 7
	TypeVFL          IDType = 8
	TypeVOL          IDType = 9
	TypeGenPropClass IDType = 10
	TypeGenPropList  IDType = 11
	TypeErrorClass   IDType = 12
	TypeErrorMsg     IDType = 13
	TypeErrorStack   IDType = 14
	TypeSpaceSelIter IDType = 15
	TypeEventSet     IDType = 16

	NTypes IDType = 17
)

var idTypeNames = map[IDType]string{
	BadID:            "bad",
	TypeFile:         "file",
	TypeGroup:        "group",
	TypeDatatype:     "datatype",
	TypeDataspace:    "dataspace",
	TypeDataset:      "dataset",
	TypeMap:          "map",
	TypeAttr:         "attribute",
	TypeVFL:          "vfl",
	TypeVOL:          "vol",
	TypeGenPropClass: "property list class",
	TypeGenPropList:  "property list",
	TypeErrorClass:   "error class",
	TypeErrorMsg:     "error message",
	TypeErrorStack:   "error stack",
	TypeSpaceSelIter: "selection iterator",
	TypeEventSet:     "event set",
}

// String returns a readable name for the category.
func (t IDType) String() string {
	if name, ok := idTypeNames[t]; ok {
		return name
	}
	return "IDType(" + strconv.Itoa(int(t)) + ")"
}

// InRange reports whether t lies strictly between BadID and NTypes.
func (t IDType) InRange() bool {
	return t > BadID && t < NTypes
}

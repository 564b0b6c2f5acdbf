package chirp

// DefaultAddress is the factory I2C address of the sensor.
const DefaultAddress = 0x20

const (
	MinAddress = 0x01
	MaxAddress = 0x7F
)

// Register map
const (
	regCapacitance  byte = 0x00 // (r) 2 bytes
	regSetAddress   byte = 0x01 // (w) 1 byte
	regGetAddress   byte = 0x02 // (r) 1 byte
	regMeasureLight byte = 0x03 // (w) n/a
	regLight        byte = 0x04 // (r) 2 bytes
	regTemperature  byte = 0x05 // (r) 2 bytes, signed
	regReset        byte = 0x06 // (w) n/a
	regVersion      byte = 0x07 // (r) 1 byte
)

// Register describes a single entry of the sensor register map.
type Register struct {
	Name     string
	Selector byte
	Width    int
	Signed   bool
	Write    bool
}

// Registers lists the register map in selector order.
var Registers = []Register{
	{Name: "capacitance", Selector: regCapacitance, Width: 2},
	{Name: "set_address", Selector: regSetAddress, Width: 1, Write: true},
	{Name: "get_address", Selector: regGetAddress, Width: 1},
	{Name: "measure_light", Selector: regMeasureLight, Width: 0, Write: true},
	{Name: "light", Selector: regLight, Width: 2},
	{Name: "temperature", Selector: regTemperature, Width: 2, Signed: true},
	{Name: "reset", Selector: regReset, Width: 0, Write: true},
	{Name: "version", Selector: regVersion, Width: 1},
}

// ValidAddress reports whether addr can be assigned to the sensor.
func ValidAddress(addr byte) bool {
	return addr >= MinAddress && addr <= MaxAddress
}

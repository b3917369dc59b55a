package sahara

// Status describes an end-of-image-transfer status code.
type Status struct {
	// Code is the raw status value
	Code uint32

	// Version is the protocol version that introduced the code ("--" if unknown)
	Version string

	// Description is the human-readable meaning
	Description string
}

// StatusSuccess is the only non-failure status.
const StatusSuccess = 0x00

var statusTable = []Status{
	{0x00, "1.0", "Success"},
	{0x01, "1.0", "Invalid command received in current state"},
	{0x02, "1.0", "Protocol mismatch between host and target"},
	{0x03, "1.0", "Invalid target protocol version"},
	{0x04, "1.0", "Invalid host protocol version"},
	{0x05, "1.0", "Invalid packet size received"},
	{0x06, "1.0", "Unexpected image ID received 1"},
	{0x07, "1.0", "Invalid image header size received"},
	{0x08, "1.0", "Invalid image data size received"},
	{0x09, "1.0", "Invalid image type received"},
	{0x0A, "1.0", "Invalid transmission length"},
	{0x0B, "1.0", "Invalid reception length"},
	{0x0C, "1.0", "General transmission or reception error"},
	{0x0D, "1.0", "Error while transmitting READ_DATA packet"},
	{0x0E, "1.0", "Cannot receive specified number of program headers"},
	{0x0F, "1.0", "Invalid data length received for program headers"},
	{0x10, "1.0", "Multiple shared segments found in ELF image"},
	{0x11, "1.0", "Uninitialized program header location"},
	{0x12, "1.0", "Invalid destination address"},
	{0x13, "1.0", "Invalid data size received in image header"},
	{0x14, "1.0", "Invalid ELF header received"},
	{0x15, "1.0", "Unknown host error received in HELLO_RESP"},
	{0x16, "1.0", "Timeout while receiving data"},
	{0x17, "1.0", "Timeout while transmitting data"},
	{0x18, "2.0", "Invalid mode received from host"},
	{0x19, "2.0", "Invalid memory read access"},
	{0x1A, "2.0", "Host cannot handle read data size requested"},
	{0x1B, "2.0", "Memory debug not supported"},
	{0x1C, "2.1", "Invalid mode switch"},
	{0x1D, "2.1", "Failed to execute command"},
	{0x1E, "2.1", "Invalid parameter passed to command execution"},
	{0x1F, "2.1", "Unsupported client command received"},
	{0x20, "2.1", "Invalid client command received for data response"},
	{0x21, "2.4", "Failed to authenticate hash table"},
	{0x22, "2.4", "Failed to verify hash for a given segment of ELF image"},
	{0x23, "2.4", "Failed to find hash table in ELF image"},
	{0x24, "2.4", "Target failed to initialize"},
	{0x25, "2.5", "Failed to authenticate generic image"},
}

// LookupStatus maps a status code to its description. Unknown codes return a
// generic "unknown error" entry that keeps the raw code.
func LookupStatus(code uint32) Status {
	for _, s := range statusTable {
		if s.Code == code {
			return s
		}
	}
	return Status{Code: code, Version: "--", Description: "unknown error"}
}

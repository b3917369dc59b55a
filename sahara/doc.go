// Package sahara implements the host side of the Qualcomm Sahara protocol
// used to upload a flash programmer into an EDL target's RAM.
//
// # Protocol Overview
//
// Every record starts with an 8-byte little-endian header:
//
//	[COMMAND u32][LENGTH u32][FIELDS...]
//
// LENGTH is the size of the whole record, header included. Image data sent in
// reply to a read request is raw and carries no header.
//
// A successful upload looks like this:
//
//	target                      host
//	Hello               ->
//	                    <-      HelloResponse (version 2, image transfer complete)
//	ReadData(off, len)  ->
//	                    <-      image[off:off+len]
//	...
//	EndImageTransfer(0) ->
//	                    <-      Done
//	DoneResponse        ->
//
// # Running an Upload
//
//	tr := transport.New(pipe)
//	m := sahara.NewMachine(tr, programmer)
//	if err := m.Run(ctx); err != nil {
//	    var te *sahara.TransferError
//	    if errors.As(err, &te) {
//	        fmt.Println("target rejected image:", te.Status.Description)
//	    }
//	    return err
//	}
//
// A non-zero EndImageTransfer status is reported as a TransferError whose
// message carries the status description from LookupStatus.
package sahara

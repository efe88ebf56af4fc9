/*
Package atomicfile writes a file so that readers see either the previous
content or the complete new content, never a partial write.

Data goes to a temporary file in the destination directory. Close() syncs
it and renames it over the destination. If any Write() or the final
Close() fails, the temporary file is removed and the destination is left
untouched.

	func save(path string, d []byte) error {
		f, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// removes the temp file on early return or panic
		defer f.RemoveIfNotClosed()

		if _, err = f.Write(d); err != nil {
			return err
		}
		return f.Close()
	}

WriteFile does the above in one call.
*/
package atomicfile

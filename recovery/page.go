package recovery

import "fmt"

const recoveryHTML = `<!DOCTYPE html>
<html>
<head><title>Firmware Recovery</title></head>
<body>
<h1>Firmware Recovery</h1>
<p>Select a firmware image. The device will verify and apply it
automatically once the upload completes.</p>
<input type="file" id="input" onchange="upload()"><br><br>
<script>
function upload() {
    const input = document.getElementById('input');
    if (input.files.length > 0) {
        const rdr = new FileReader();
        rdr.onload = e => fetch('upload', {
            method: 'POST',
            headers: {'Content-Type': 'application/octet-stream'},
            body: e.target.result
        }).then(res => res.text()).catch(err => console.error('Error:', err));
        rdr.readAsArrayBuffer(input.files[0]);
    }
}
</script>
<p><a href="/?reboot">Reboot without uploading</a></p>
</body>
</html>
`

var recoveryPageBytes = buildRecoveryPage()

func buildRecoveryPage() []byte {
	body := []byte(recoveryHTML)
	header := fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: close\r\n\r\n", len(body))
	return append([]byte(header), body...)
}

func recoveryPage() []byte {
	return recoveryPageBytes
}
